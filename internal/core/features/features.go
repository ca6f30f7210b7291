// Package features derives point-in-time feature vectors from player game
// logs. Every derived value at a given game is a pure function of that
// player's strictly earlier games — nothing from the current or any later
// game leaks in.
package features

import (
	"github.com/charleschow/sog-edge/internal/core/gamelog"
)

// Trailing holds the windowed aggregates for one (player, game) row,
// computed over the player's prior observations only.
//
// Valid is false exactly when the player has no prior games. In that case
// all aggregates are zero by convention; the zero is a sentinel, not a
// measurement, and Valid is how callers tell the two apart before the
// final feature-vector boundary.
type Trailing struct {
	Valid bool

	ShotsLast1 float64

	ShotsLast5Sum   float64
	ShotsLast5Avg   float64
	TOILast5Sum     float64
	ShotsPer60Last5 float64

	ShotsLast10Sum   float64
	ShotsLast10Avg   float64
	TOILast10Sum     float64
	ShotsPer60Last10 float64

	ShotsSeasonToDate      float64
	TOISeasonToDate        float64
	ShotsPer60SeasonToDate float64

	GamesPlayedSoFar  int
	DaysSinceLastGame float64

	// MatchupShotsAvg is the player's average shots in prior meetings with
	// this game's opponent. A player who has history but has never faced
	// the opponent falls back to their overall prior average.
	MatchupShotsAvg float64
}

// BuildPlayerTrailing computes the trailing feature record for every index
// of one player's chronologically sorted history in a single forward pass.
// Row i uses observations [0, i) only.
func BuildPlayerTrailing(obs []gamelog.Observation) []Trailing {
	n := len(obs)
	out := make([]Trailing, n)
	if n == 0 {
		return out
	}

	// Prefix sums over shots and ice time; window sums become two lookups.
	prefixShots := make([]float64, n+1)
	prefixTOI := make([]float64, n+1)
	for i, o := range obs {
		prefixShots[i+1] = prefixShots[i] + float64(o.Shots)
		prefixTOI[i+1] = prefixTOI[i] + o.TOIMinutes
	}

	windowSum := func(prefix []float64, i, size int) float64 {
		lo := i - size
		if lo < 0 {
			lo = 0
		}
		return prefix[i] - prefix[lo]
	}

	// Running shot totals per opponent faced, for the matchup average.
	oppShots := make(map[string]float64)
	oppGames := make(map[string]int)

	for i := range obs {
		t := &out[i]
		t.GamesPlayedSoFar = i
		if i == 0 {
			oppShots[obs[i].OpponentAbbrev] += float64(obs[i].Shots)
			oppGames[obs[i].OpponentAbbrev]++
			continue
		}
		t.Valid = true

		if n := oppGames[obs[i].OpponentAbbrev]; n > 0 {
			t.MatchupShotsAvg = oppShots[obs[i].OpponentAbbrev] / float64(n)
		} else {
			t.MatchupShotsAvg = prefixShots[i] / float64(i)
		}
		oppShots[obs[i].OpponentAbbrev] += float64(obs[i].Shots)
		oppGames[obs[i].OpponentAbbrev]++

		t.ShotsLast1 = float64(obs[i-1].Shots)
		t.DaysSinceLastGame = obs[i].GameDate.Sub(obs[i-1].GameDate).Hours() / 24.0

		n5 := min(5, i)
		t.ShotsLast5Sum = windowSum(prefixShots, i, 5)
		t.ShotsLast5Avg = t.ShotsLast5Sum / float64(n5)
		t.TOILast5Sum = windowSum(prefixTOI, i, 5)
		t.ShotsPer60Last5 = per60(t.ShotsLast5Sum, t.TOILast5Sum)

		n10 := min(10, i)
		t.ShotsLast10Sum = windowSum(prefixShots, i, 10)
		t.ShotsLast10Avg = t.ShotsLast10Sum / float64(n10)
		t.TOILast10Sum = windowSum(prefixTOI, i, 10)
		t.ShotsPer60Last10 = per60(t.ShotsLast10Sum, t.TOILast10Sum)

		t.ShotsSeasonToDate = prefixShots[i]
		t.TOISeasonToDate = prefixTOI[i]
		t.ShotsPer60SeasonToDate = per60(t.ShotsSeasonToDate, t.TOISeasonToDate)
	}

	return out
}

// per60 is the ice-time-normalized shot rate: 60 × shots / minutes,
// zero when no ice time was recorded.
func per60(shots, toiMinutes float64) float64 {
	if toiMinutes <= 0 {
		return 0
	}
	return 60.0 * shots / toiMinutes
}
