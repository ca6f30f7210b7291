// Command verify settles pending ledger rows against final boxscores.
// Run it the morning after a slate; games still in progress stay pending.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/sog-edge/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/sog-edge/internal/config"
	"github.com/charleschow/sog-edge/internal/core/analysis"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/ledger"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

func main() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	dateFlag := flag.String("date", yesterday, "slate date to settle (YYYY-MM-DD)")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	date, err := gamelog.ParseDate(*dateFlag)
	if err != nil {
		telemetry.Errorf("verify: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := ledger.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("verify: open ledger: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	verifier := &analysis.Verifier{
		NHL:     nhlapi.NewClient(cfg.NHLBaseURL),
		Store:   store,
		Workers: cfg.FetchWorkers,
	}

	stats, err := verifier.VerifyDate(ctx, date)
	if err != nil {
		telemetry.Errorf("verify: %v", err)
		os.Exit(1)
	}
	if stats.Checked == 0 {
		telemetry.Infof("verify: nothing pending for %s", *dateFlag)
	}
}
