package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/teamstats"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func seqLog(playerID int64, shots []int) []gamelog.Observation {
	obs := make([]gamelog.Observation, len(shots))
	for i, s := range shots {
		obs[i] = gamelog.Observation{
			PlayerID:       playerID,
			GameID:         int64(2026020000 + i),
			GameDate:       day(i),
			TeamAbbrev:     "TOR",
			OpponentAbbrev: "MTL",
			Shots:          s,
			TOIMinutes:     18.0,
		}
	}
	return obs
}

func TestTrailingWindows(t *testing.T) {
	shots := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	trailing := BuildPlayerTrailing(seqLog(1, shots))
	require.Len(t, trailing, 11)

	// Eleventh game sees exactly the first ten.
	f := trailing[10]
	assert.True(t, f.Valid)
	assert.Equal(t, 10.0, f.ShotsLast1)
	assert.Equal(t, 40.0, f.ShotsLast5Sum)
	assert.Equal(t, 8.0, f.ShotsLast5Avg)
	assert.Equal(t, 55.0, f.ShotsLast10Sum)
	assert.Equal(t, 5.5, f.ShotsLast10Avg)
	assert.Equal(t, 55.0, f.ShotsSeasonToDate)
	assert.Equal(t, 10, f.GamesPlayedSoFar)
	assert.Equal(t, 1.0, f.DaysSinceLastGame)
	assert.Equal(t, 5.5, f.MatchupShotsAvg) // every prior game was vs MTL
}

func TestTrailingShortHistory(t *testing.T) {
	trailing := BuildPlayerTrailing(seqLog(1, []int{3, 5, 1}))

	// Third game: windows cover only the two games that exist.
	f := trailing[2]
	assert.Equal(t, 8.0, f.ShotsLast5Sum)
	assert.Equal(t, 4.0, f.ShotsLast5Avg)
	assert.Equal(t, 4.0, f.ShotsLast10Avg)
	assert.Equal(t, 2, f.GamesPlayedSoFar)
}

func TestTrailingPer60(t *testing.T) {
	obs := seqLog(1, []int{2, 4})
	obs[0].TOIMinutes = 20.0
	trailing := BuildPlayerTrailing(obs)

	// 2 shots in 20 minutes -> 6 per 60.
	assert.InDelta(t, 6.0, trailing[1].ShotsPer60Last5, 1e-9)
	assert.InDelta(t, 6.0, trailing[1].ShotsPer60SeasonToDate, 1e-9)
}

func TestTrailingPer60ZeroTOI(t *testing.T) {
	obs := seqLog(1, []int{2, 4})
	obs[0].TOIMinutes = 0
	trailing := BuildPlayerTrailing(obs)
	assert.Equal(t, 0.0, trailing[1].ShotsPer60Last5)
}

func TestFirstGameSentinel(t *testing.T) {
	trailing := BuildPlayerTrailing(seqLog(1, []int{7}))
	f := trailing[0]
	assert.False(t, f.Valid)
	assert.Equal(t, 0.0, f.ShotsLast1)
	assert.Equal(t, 0.0, f.ShotsSeasonToDate)
	assert.Equal(t, 0, f.GamesPlayedSoFar)
}

func TestMatchupShotsAvg(t *testing.T) {
	obs := seqLog(1, []int{2, 4, 6, 8})
	obs[1].OpponentAbbrev = "BOS"
	obs[3].OpponentAbbrev = "BOS"
	trailing := BuildPlayerTrailing(obs)

	// First game: sentinel zero.
	assert.Equal(t, 0.0, trailing[0].MatchupShotsAvg)
	// Second game is the first meeting with BOS; fall back to the overall
	// prior average, which is just game one.
	assert.Equal(t, 2.0, trailing[1].MatchupShotsAvg)
	// Third game vs MTL averages the one prior MTL game, not all priors.
	assert.Equal(t, 2.0, trailing[2].MatchupShotsAvg)
	// Fourth game vs BOS averages the one prior BOS game.
	assert.Equal(t, 4.0, trailing[3].MatchupShotsAvg)
}

func TestNoLeakage(t *testing.T) {
	shots := []int{1, 2, 3, 4, 5, 6, 7, 8}
	base := BuildPlayerTrailing(seqLog(1, shots))

	// Mutating any later game must not change features at earlier indices.
	mutated := seqLog(1, shots)
	mutated[5].Shots = 99
	mutated[6].Shots = 0
	mutated[7].TOIMinutes = 1.0
	after := BuildPlayerTrailing(mutated)

	for i := 0; i <= 5; i++ {
		assert.Equal(t, base[i], after[i], "features at index %d changed", i)
	}
}

func TestUpcomingTrailingMatchesInSample(t *testing.T) {
	shots := []int{3, 1, 4, 1, 5}
	log := seqLog(1, shots)

	up := UpcomingTrailing(log, "MTL", day(7))

	// Same history plus the real sixth game must produce the same record.
	extended := seqLog(1, append(shots, 2))
	extended[5].GameDate = day(7)
	inSample := BuildPlayerTrailing(extended)[5]
	assert.Equal(t, inSample, up)
	assert.Equal(t, 3.0, up.DaysSinceLastGame)
}

func TestVectorLengthMatchesColumns(t *testing.T) {
	r := Row{}
	assert.Len(t, r.Vector(), len(FeatureColumns))
}

func TestTrainableOnlyDropsFirstGames(t *testing.T) {
	obs := append(seqLog(1, []int{2, 3}), seqLog(2, []int{4})...)
	series := teamstats.BuildSeries(nil)
	rows := BuildDataset(obs, series)
	require.Len(t, rows, 3)

	trainable := TrainableOnly(rows)
	require.Len(t, trainable, 1)
	assert.Equal(t, int64(1), trainable[0].Obs.PlayerID)
	assert.Equal(t, 3, trainable[0].Obs.Shots)
}
