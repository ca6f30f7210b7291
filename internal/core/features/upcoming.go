package features

import (
	"time"

	"github.com/charleschow/sog-edge/internal/core/gamelog"
)

// UpcomingTrailing computes the trailing record a player carries into a
// not-yet-played game on gameDate against opponent, aggregating the full
// sorted history. The mechanics are identical to the in-sample pass: the
// upcoming game contributes nothing to its own features.
func UpcomingTrailing(log []gamelog.Observation, opponent string, gameDate time.Time) Trailing {
	padded := make([]gamelog.Observation, len(log), len(log)+1)
	copy(padded, log)
	padded = append(padded, gamelog.Observation{GameDate: gameDate, OpponentAbbrev: opponent})
	trailing := BuildPlayerTrailing(padded)
	return trailing[len(trailing)-1]
}
