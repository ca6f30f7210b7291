// Command train fits the shots-on-goal model from the stored game logs
// and writes the artifact used by analyze and backtest.
package main

import (
	"os"

	"github.com/charleschow/sog-edge/internal/config"
	"github.com/charleschow/sog-edge/internal/core/features"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/model"
	"github.com/charleschow/sog-edge/internal/core/teamstats"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	store, err := gamelog.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("train: open store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	obs, err := store.All()
	if err != nil {
		telemetry.Errorf("train: load observations: %v", err)
		os.Exit(1)
	}
	if len(obs) == 0 {
		telemetry.Errorf("train: no observations; run ingest first")
		os.Exit(1)
	}

	// Prefer the persisted team game table; fall back to deriving it when
	// the ingest step has not populated it yet.
	tgStore, err := teamstats.OpenStore(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("train: open team store: %v", err)
		os.Exit(1)
	}
	teamGames, err := tgStore.All()
	tgStore.Close()
	if err != nil || len(teamGames) == 0 {
		teamGames = teamstats.BuildFromObservations(obs)
	}

	series := teamstats.BuildSeries(teamGames)
	rows := features.BuildDataset(obs, series)

	_, halfLife, err := config.LoadEdgeLimits(cfg.EdgeLimitsPath)
	if err != nil {
		telemetry.Errorf("train: edge limits: %v", err)
		os.Exit(1)
	}

	artifact, err := model.Train(rows, halfLife, model.DefaultConfig)
	if err != nil {
		telemetry.Errorf("train: %v", err)
		os.Exit(1)
	}
	if err := artifact.Save(cfg.ModelPath); err != nil {
		telemetry.Errorf("train: save artifact: %v", err)
		os.Exit(1)
	}

	ev := artifact.Eval
	telemetry.Infof("train: saved %s (trees=%d, train=%d test=%d)",
		cfg.ModelPath, len(artifact.Trees), ev.TrainRows, ev.TestRows)
	telemetry.Infof("train: test MAE=%.3f (trailing-10 baseline %.3f), R2=%.3f",
		ev.MAE, ev.BaselineMAE, ev.R2)
}
