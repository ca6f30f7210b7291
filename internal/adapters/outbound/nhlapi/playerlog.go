package nhlapi

import (
	"context"
	"fmt"

	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

type gameLogResponse struct {
	SeasonID int64 `json:"seasonId"`
	GameLog  []struct {
		GameID         int64  `json:"gameId"`
		GameDate       string `json:"gameDate"`
		GameTypeID     int    `json:"gameTypeId"`
		TeamAbbrev     string `json:"teamAbbrev"`
		OpponentAbbrev string `json:"opponentAbbrev"`
		HomeRoadFlag   string `json:"homeRoadFlag"`
		Shots          int    `json:"shots"`
		Goals          int    `json:"goals"`
		Assists        int    `json:"assists"`
		Points         int    `json:"points"`
		TOI            string `json:"toi"`
	} `json:"gameLog"`
}

// PlayerGameLog fetches one player's game-by-game rows for a season and
// game type, mapped into observation form. Rows with an unparseable ice
// time come back with zero minutes and fall to the store's validation
// boundary, which drops and counts them.
func (c *Client) PlayerGameLog(ctx context.Context, playerID int64, seasonID string, gameType int) ([]gamelog.Observation, error) {
	telemetry.Metrics.ActiveFetches.Inc()
	defer telemetry.Metrics.ActiveFetches.Dec()

	path := fmt.Sprintf("/player/%d/game-log/%s/%d", playerID, seasonID, gameType)

	var resp gameLogResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	out := make([]gamelog.Observation, 0, len(resp.GameLog))
	for _, g := range resp.GameLog {
		date, err := gamelog.ParseDate(g.GameDate)
		if err != nil {
			telemetry.Warnf("nhlapi: player %d game %d: bad date %q", playerID, g.GameID, g.GameDate)
			continue
		}
		toiMinutes, err := gamelog.ParseTOI(g.TOI)
		if err != nil {
			toiMinutes = 0
		}
		out = append(out, gamelog.Observation{
			PlayerID:       playerID,
			GameID:         g.GameID,
			SeasonID:       seasonID,
			GameType:       g.GameTypeID,
			GameDate:       date,
			TeamAbbrev:     g.TeamAbbrev,
			OpponentAbbrev: g.OpponentAbbrev,
			HomeFlag:       g.HomeRoadFlag == "H",
			Shots:          g.Shots,
			Goals:          g.Goals,
			Assists:        g.Assists,
			Points:         g.Points,
			TOIRaw:         g.TOI,
			TOIMinutes:     toiMinutes,
		})
	}

	telemetry.Metrics.GameLogsFetched.Inc()
	return out, nil
}
