package nhlapi

import (
	"context"
	"fmt"

	"github.com/charleschow/sog-edge/internal/telemetry"
)

// Boxscore is the settled per-player shot totals for one game, keyed by
// player id. Goalies are excluded; shot props are skater markets.
type Boxscore struct {
	GameID     int64
	GameState  string
	HomeAbbrev string
	AwayAbbrev string
	SOG        map[int64]int
}

// Final reports whether the game has concluded and the totals are safe
// to settle against.
func (b *Boxscore) Final() bool {
	return b.GameState == "OFF" || b.GameState == "FINAL"
}

type boxscoreSkater struct {
	PlayerID int64 `json:"playerId"`
	SOG      int   `json:"sog"`
}

type boxscoreSide struct {
	Forwards []boxscoreSkater `json:"forwards"`
	Defense  []boxscoreSkater `json:"defense"`
}

type boxscoreResponse struct {
	ID        int64  `json:"id"`
	GameState string `json:"gameState"`
	HomeTeam  struct {
		Abbrev string `json:"abbrev"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Abbrev string `json:"abbrev"`
	} `json:"awayTeam"`
	PlayerByGameStats struct {
		HomeTeam boxscoreSide `json:"homeTeam"`
		AwayTeam boxscoreSide `json:"awayTeam"`
	} `json:"playerByGameStats"`
}

// GameBoxscore fetches the final (or in-progress) boxscore for one game.
func (c *Client) GameBoxscore(ctx context.Context, gameID int64) (*Boxscore, error) {
	var resp boxscoreResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/gamecenter/%d/boxscore", gameID), &resp); err != nil {
		telemetry.Metrics.BoxscoreErrors.Inc()
		return nil, err
	}

	b := &Boxscore{
		GameID:     resp.ID,
		GameState:  resp.GameState,
		HomeAbbrev: resp.HomeTeam.Abbrev,
		AwayAbbrev: resp.AwayTeam.Abbrev,
		SOG:        make(map[int64]int),
	}
	for _, side := range []boxscoreSide{resp.PlayerByGameStats.HomeTeam, resp.PlayerByGameStats.AwayTeam} {
		for _, sk := range side.Forwards {
			b.SOG[sk.PlayerID] = sk.SOG
		}
		for _, sk := range side.Defense {
			b.SOG[sk.PlayerID] = sk.SOG
		}
	}

	telemetry.Metrics.BoxscoresFetched.Inc()
	return b, nil
}
