// Command ingest refreshes the local stores from the NHL APIs: the
// skater directory (which becomes the player name map), every skater's
// season game log, and the derived team game table.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/sog-edge/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/sog-edge/internal/config"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/names"
	"github.com/charleschow/sog-edge/internal/core/teamstats"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("ingest: season %s game type %d", cfg.SeasonID, cfg.GameType)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	statsClient := nhlapi.NewStatsClient(cfg.NHLStatsURL)
	skaters, err := statsClient.Skaters(ctx, cfg.SeasonID, cfg.GameType)
	if err != nil {
		telemetry.Errorf("ingest: skater directory: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("ingest: %d skaters in directory", len(skaters))

	entries := make([]names.PlayerEntry, 0, len(skaters))
	for _, sk := range skaters {
		entries = append(entries, names.PlayerEntry{Name: sk.FullName, PlayerID: sk.PlayerID})
	}
	if err := names.SavePlayerMap(cfg.PlayerMapPath, entries); err != nil {
		telemetry.Errorf("ingest: save player map: %v", err)
		os.Exit(1)
	}

	store, err := gamelog.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("ingest: open store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	client := nhlapi.NewClient(cfg.NHLBaseURL)

	var (
		mu       sync.Mutex
		inserted int
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.FetchWorkers)
	for _, sk := range skaters {
		sk := sk
		eg.Go(func() error {
			obs, err := client.PlayerGameLog(gctx, sk.PlayerID, cfg.SeasonID, cfg.GameType)
			if err != nil {
				telemetry.Warnf("ingest: game log for %s (%d): %v", sk.FullName, sk.PlayerID, err)
				return nil
			}
			n, err := store.AppendBatch(obs)
			if err != nil {
				return err
			}
			mu.Lock()
			inserted += n
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		telemetry.Errorf("ingest: %v", err)
		os.Exit(1)
	}

	// Rebuild the team game table from what is now stored.
	obs, err := store.SeasonLog(cfg.SeasonID)
	if err != nil {
		telemetry.Errorf("ingest: load season: %v", err)
		os.Exit(1)
	}
	teamGames := teamstats.BuildFromObservations(obs)

	tgStore, err := teamstats.OpenStore(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("ingest: open team store: %v", err)
		os.Exit(1)
	}
	defer tgStore.Close()

	if err := tgStore.UpsertBatch(teamGames); err != nil {
		telemetry.Errorf("ingest: upsert team games: %v", err)
		os.Exit(1)
	}

	telemetry.Infof("ingest: done. new observations=%d dropped=%d team games=%d",
		inserted, telemetry.Metrics.GameLogRowsDropped.Value(), len(teamGames))
}
