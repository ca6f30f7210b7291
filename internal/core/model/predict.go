package model

import (
	"errors"
	"time"

	"github.com/charleschow/sog-edge/internal/core/features"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/teamstats"
)

// ErrNoHistory means the player has no ingested games to derive features
// from. Callers skip the player rather than guessing.
var ErrNoHistory = errors.New("model: player has no game history")

// UpcomingContext is what is knowable about a game before puck drop.
type UpcomingContext struct {
	GameDate time.Time
	Home     bool
	Opponent string // opponent team abbreviation
}

// PredictUpcoming scores a player's shots on goal for an upcoming game.
// Trailing aggregates come from the player's full sorted history, rest
// days from the gap to the upcoming date, and the opponent's defensive
// profile from the strength series as of that date.
func PredictUpcoming(a *Artifact, log []gamelog.Observation, ctx UpcomingContext, series *teamstats.Series) (float64, error) {
	if len(log) == 0 {
		return 0, ErrNoHistory
	}
	gamelog.SortChronological(log)

	row := features.Row{
		Obs:    gamelog.Observation{HomeFlag: ctx.Home},
		Feat:   features.UpcomingTrailing(log, ctx.Opponent, ctx.GameDate),
		OppDef: series.AsOf(ctx.Opponent, ctx.GameDate),
	}
	return a.Predict(row.Vector())
}
