package nhlapi

import (
	"context"
	"fmt"
	"time"

	"github.com/charleschow/sog-edge/internal/core/gamelog"
)

// ScheduledGame is one slate entry from the daily schedule.
type ScheduledGame struct {
	GameID     int64
	GameDate   time.Time
	GameType   int
	HomeAbbrev string
	AwayAbbrev string
	State      string // FUT, LIVE, OFF, FINAL
}

type scheduleResponse struct {
	GameWeek []struct {
		Date  string `json:"date"`
		Games []struct {
			ID        int64  `json:"id"`
			GameType  int    `json:"gameType"`
			GameState string `json:"gameState"`
			HomeTeam  struct {
				Abbrev string `json:"abbrev"`
			} `json:"homeTeam"`
			AwayTeam struct {
				Abbrev string `json:"abbrev"`
			} `json:"awayTeam"`
		} `json:"games"`
	} `json:"gameWeek"`
}

// Schedule returns the games on one calendar date. The endpoint responds
// with a week of slates; only the requested date's entry is kept.
func (c *Client) Schedule(ctx context.Context, date time.Time) ([]ScheduledGame, error) {
	day := date.Format("2006-01-02")

	var resp scheduleResponse
	if err := c.getJSON(ctx, "/schedule/"+day, &resp); err != nil {
		return nil, err
	}

	var out []ScheduledGame
	for _, week := range resp.GameWeek {
		if week.Date != day {
			continue
		}
		for _, g := range week.Games {
			gameDate, err := gamelog.ParseDate(week.Date)
			if err != nil {
				return nil, fmt.Errorf("schedule date %q: %w", week.Date, err)
			}
			out = append(out, ScheduledGame{
				GameID:     g.ID,
				GameDate:   gameDate,
				GameType:   g.GameType,
				HomeAbbrev: g.HomeTeam.Abbrev,
				AwayAbbrev: g.AwayTeam.Abbrev,
				State:      g.GameState,
			})
		}
	}
	return out, nil
}
