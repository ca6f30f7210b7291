package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/charleschow/sog-edge/internal/core/features"
)

// DefaultHalfLifeDays is the recency-weighting half-life: a sample half a
// year old counts half as much as one from today.
const DefaultHalfLifeDays = 180.0

const testFraction = 0.2

// Train fits a boosted ensemble on the dataset with exponential recency
// weights and a time-ordered train/test split, and returns a finished
// artifact with its held-out evaluation.
//
// The split is chronological, never random: the test block is the most
// recent fraction of games, so evaluation mirrors live use where the model
// always predicts forward in time.
func Train(rows []features.Row, halfLifeDays float64, cfg Config) (*Artifact, error) {
	rows = features.TrainableOnly(rows)
	if len(rows) < 4*cfg.MinChildSamples {
		return nil, fmt.Errorf("model: only %d trainable rows, need at least %d", len(rows), 4*cfg.MinChildSamples)
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}

	ordered := make([]features.Row, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Obs.GameDate.Equal(ordered[j].Obs.GameDate) {
			return ordered[i].Obs.GameDate.Before(ordered[j].Obs.GameDate)
		}
		return ordered[i].Obs.GameID < ordered[j].Obs.GameID
	})

	split := len(ordered) - int(float64(len(ordered))*testFraction)
	train, test := ordered[:split], ordered[split:]

	x := make([][]float64, len(train))
	y := make([]float64, len(train))
	for i, r := range train {
		x[i] = r.Vector()
		y[i] = r.Target()
	}

	// Weights decay from the newest training game backwards.
	anchor := train[len(train)-1].Obs.GameDate
	w := make([]float64, len(train))
	for i, r := range train {
		daysOld := anchor.Sub(r.Obs.GameDate).Hours() / 24
		w[i] = math.Pow(0.5, daysOld/halfLifeDays)
	}

	base, trees := fitEnsemble(x, y, w, cfg)

	a := &Artifact{
		FeatureColumns: features.FeatureColumns,
		Base:           base,
		LearningRate:   cfg.LearningRate,
		Trees:          trees,
		TrainedAt:      time.Now().UTC(),
		Config:         cfg,
	}
	a.Eval = evaluate(a, train, test)
	return a, nil
}

// evaluate computes held-out MAE and R², plus the MAE of the trailing-10
// shots average as a no-model baseline.
func evaluate(a *Artifact, train, test []features.Row) Eval {
	ev := Eval{TrainRows: len(train), TestRows: len(test)}
	if len(test) == 0 {
		return ev
	}

	trailing10Idx := -1
	for i, c := range a.FeatureColumns {
		if c == "shots_last10_avg" {
			trailing10Idx = i
			break
		}
	}

	var (
		absErr, absBase float64
		sumY, ssRes     float64
	)
	for _, r := range test {
		pred, err := a.Predict(r.Vector())
		if err != nil {
			continue
		}
		actual := r.Target()
		absErr += math.Abs(pred - actual)
		if trailing10Idx >= 0 {
			absBase += math.Abs(r.Vector()[trailing10Idx] - actual)
		}
		sumY += actual
		ssRes += (pred - actual) * (pred - actual)
	}

	n := float64(len(test))
	meanY := sumY / n
	var ssTot float64
	for _, r := range test {
		d := r.Target() - meanY
		ssTot += d * d
	}

	ev.MAE = absErr / n
	ev.BaselineMAE = absBase / n
	if ssTot > 0 {
		ev.R2 = 1 - ssRes/ssTot
	}
	return ev
}
