package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Eval holds the held-out evaluation computed at train time.
type Eval struct {
	TrainRows   int     `json:"train_rows"`
	TestRows    int     `json:"test_rows"`
	MAE         float64 `json:"mae"`
	R2          float64 `json:"r2"`
	BaselineMAE float64 `json:"baseline_mae"` // trailing-10 average as the predictor
}

// Artifact is an immutable trained model. Loaded once, passed explicitly
// to every caller that predicts; there is no process-global model state.
type Artifact struct {
	FeatureColumns []string  `json:"feature_columns"`
	Base           float64   `json:"base"`
	LearningRate   float64   `json:"learning_rate"`
	Trees          []*Tree   `json:"trees"`
	TrainedAt      time.Time `json:"trained_at"`
	Config         Config    `json:"config"`
	Eval           Eval      `json:"eval"`
}

// Predict scores one feature vector, clamped to a nonnegative shot count.
func (a *Artifact) Predict(x []float64) (float64, error) {
	if len(x) != len(a.FeatureColumns) {
		return 0, fmt.Errorf("model: feature vector has %d values, model expects %d", len(x), len(a.FeatureColumns))
	}
	pred := a.Base
	for _, t := range a.Trees {
		pred += a.LearningRate * t.Predict(x)
	}
	if pred < 0 {
		pred = 0
	}
	return pred, nil
}

// Save writes the artifact as JSON, creating parent directories as needed.
func (a *Artifact) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("model: create artifact dir: %w", err)
		}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("model: encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("model: write artifact: %w", err)
	}
	return nil
}

// Load reads a trained artifact from disk.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("model: decode artifact %s: %w", path, err)
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("model: artifact %s has no trees", path)
	}
	return &a, nil
}
