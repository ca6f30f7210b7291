// Package ledger is the durable record of every recommendation the
// pipeline makes and how each one settled. One row per (game, player);
// re-running an analysis overwrites its row, last write wins.
package ledger

import (
	"time"

	"github.com/charleschow/sog-edge/internal/core/edge"
)

// Result is a prediction's settlement state. Rows start PENDING; WIN,
// LOSS, and PUSH are terminal.
type Result string

const (
	ResultPending Result = "PENDING"
	ResultWin     Result = "WIN"
	ResultLoss    Result = "LOSS"
	ResultPush    Result = "PUSH"
	// ResultUnknown means the game was checked but the player's shot total
	// could not be found (scratch, trade, boxscore gap). Not terminal: the
	// row stays retry-eligible in case the gap was a feed hiccup.
	ResultUnknown Result = "UNKNOWN"
)

// Prediction is one ledger row: the prop, the model's call, and its
// eventual settlement.
type Prediction struct {
	GameID         int64
	PlayerID       int64
	PlayerName     string
	TeamAbbrev     string
	OpponentAbbrev string
	GameDate       time.Time

	Line       float64
	OverOdds   *int
	UnderOdds  *int
	Bookmaker  string
	Prediction float64

	Recommendation edge.Recommendation
	ModelProb      *float64
	ImpliedProb    *float64
	TrueEdge       *float64
	Confidence     edge.Confidence

	RunID      string
	AnalyzedAt time.Time

	Result      Result
	ActualShots *int
	UnitsWon    *float64
	VerifiedAt  *time.Time
}

// Settle grades a recommendation against the realized shot total.
// Exact landings on the line push; NO BET rows push by definition since
// no stake was placed.
func Settle(rec edge.Recommendation, line float64, actualShots int) Result {
	actual := float64(actualShots)
	if actual == line || rec == edge.NoBet {
		return ResultPush
	}
	switch rec {
	case edge.BetOver:
		if actual > line {
			return ResultWin
		}
	case edge.BetUnder:
		if actual < line {
			return ResultWin
		}
	}
	return ResultLoss
}

// Units is the profit in units for a settled one-unit stake: a win pays
// the odds, a loss costs the stake, everything else is flat. A win at
// unknown odds cannot be priced and counts zero.
func Units(result Result, odds *int) float64 {
	switch result {
	case ResultWin:
		if odds == nil {
			return 0
		}
		return edge.WinUnits(*odds)
	case ResultLoss:
		return -1
	default:
		return 0
	}
}

// StakedOdds picks the odds the recommendation actually bet into.
func StakedOdds(p Prediction) *int {
	switch p.Recommendation {
	case edge.BetOver:
		return p.OverOdds
	case edge.BetUnder:
		return p.UnderOdds
	default:
		return nil
	}
}
