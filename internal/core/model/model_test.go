package model

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/sog-edge/internal/core/features"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/teamstats"
)

func day(n int) time.Time {
	return time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// syntheticRows builds a dataset whose target tracks the trailing-10
// shot average, so a correct fit must order its predictions by that
// feature.
func syntheticRows(n int) []features.Row {
	rows := make([]features.Row, n)
	for i := 0; i < n; i++ {
		level := float64(i%5) + 1 // five player archetypes, 1..5 shots a game
		rows[i] = features.Row{
			Obs: gamelog.Observation{
				PlayerID: int64(i % 5),
				GameID:   int64(2026020000 + i),
				GameDate: day(i / 5),
				Shots:    int(level),
			},
			Feat: features.Trailing{
				Valid:             true,
				ShotsLast1:        level,
				ShotsLast5Sum:     5 * level,
				ShotsLast5Avg:     level,
				TOILast5Sum:       90,
				ShotsPer60Last5:   level * 60 / 18,
				ShotsLast10Sum:    10 * level,
				ShotsLast10Avg:    level,
				TOILast10Sum:      180,
				ShotsPer60Last10:  level * 60 / 18,
				ShotsSeasonToDate: 20 * level,
				TOISeasonToDate:   360,
				GamesPlayedSoFar:  20,
				DaysSinceLastGame: 2,
			},
			OppDef: teamstats.DefenseProfile{SeasonAvg: 29, Last5Avg: 29, Last10Avg: 29},
		}
	}
	return rows
}

func TestTrainSeparatesShooters(t *testing.T) {
	artifact, err := Train(syntheticRows(500), 180, DefaultConfig)
	require.NoError(t, err)
	require.NotEmpty(t, artifact.Trees)
	assert.Equal(t, features.FeatureColumns, artifact.FeatureColumns)

	rows := syntheticRows(5)
	var preds []float64
	for _, r := range rows {
		p, err := artifact.Predict(r.Vector())
		require.NoError(t, err)
		preds = append(preds, p)
	}

	// Heavier shooters must predict strictly higher.
	for i := 1; i < len(preds); i++ {
		assert.Greater(t, preds[i], preds[i-1])
	}
	// And land near the noise-free targets.
	for i, p := range preds {
		assert.InDelta(t, float64(i+1), p, 0.5)
	}

	ev := artifact.Eval
	assert.Greater(t, ev.TrainRows, 0)
	assert.Greater(t, ev.TestRows, 0)
	assert.Less(t, ev.MAE, 1.0)
}

func TestTrainRejectsTinyDatasets(t *testing.T) {
	_, err := Train(syntheticRows(10), 180, DefaultConfig)
	assert.Error(t, err)
}

func TestPredictClampsNegative(t *testing.T) {
	a := &Artifact{
		FeatureColumns: features.FeatureColumns,
		Base:           -2.0,
		LearningRate:   1,
		Trees:          []*Tree{{Nodes: []Node{{Feature: -1, Value: 0}}}},
	}
	p, err := a.Predict(features.Row{}.Vector())
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	a := &Artifact{FeatureColumns: features.FeatureColumns}
	_, err := a.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestArtifactRoundTrip(t *testing.T) {
	artifact, err := Train(syntheticRows(500), 180, Config{
		NTrees: 20, MaxDepth: 3, LearningRate: 0.1, MinChildSamples: 20,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, artifact.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	x := syntheticRows(3)[2].Vector()
	want, err := artifact.Predict(x)
	require.NoError(t, err)
	got, err := loaded.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, artifact.Config, loaded.Config)
}

func TestLoadRejectsEmptyArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	empty := &Artifact{FeatureColumns: features.FeatureColumns}
	require.NoError(t, empty.Save(path))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRecencyWeights(t *testing.T) {
	// A 180-day half-life halves the weight of a 180-day-old sample.
	w0 := math.Pow(0.5, 0.0/180)
	w180 := math.Pow(0.5, 180.0/180)
	assert.Equal(t, 1.0, w0)
	assert.InDelta(t, 0.5, w180, 1e-12)
}

func TestPredictUpcoming(t *testing.T) {
	artifact, err := Train(syntheticRows(500), 180, Config{
		NTrees: 50, MaxDepth: 3, LearningRate: 0.1, MinChildSamples: 20,
	})
	require.NoError(t, err)

	// A steady four-shot shooter with 18 minutes a night.
	var log []gamelog.Observation
	for i := 0; i < 20; i++ {
		log = append(log, gamelog.Observation{
			PlayerID: 1, GameID: int64(2026020000 + i), GameDate: day(i * 2),
			TeamAbbrev: "TOR", OpponentAbbrev: "MTL",
			Shots: 4, TOIMinutes: 18,
		})
	}

	series := teamstats.BuildSeries(nil)
	pred, err := PredictUpcoming(artifact, log, UpcomingContext{
		GameDate: day(40), Home: true, Opponent: "MTL",
	}, series)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, pred, 1.0)
}

func TestPredictUpcomingNoHistory(t *testing.T) {
	a := &Artifact{FeatureColumns: features.FeatureColumns}
	_, err := PredictUpcoming(a, nil, UpcomingContext{GameDate: day(0), Opponent: "MTL"}, teamstats.BuildSeries(nil))
	assert.ErrorIs(t, err, ErrNoHistory)
}
