// Command report prints settled ledger performance broken down by
// confidence tier.
package main

import (
	"fmt"
	"os"

	"github.com/charleschow/sog-edge/internal/config"
	"github.com/charleschow/sog-edge/internal/core/ledger"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	store, err := ledger.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("report: open ledger: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	tiers, err := store.Summary()
	if err != nil {
		telemetry.Errorf("report: %v", err)
		os.Exit(1)
	}
	if len(tiers) == 0 {
		fmt.Println("No settled bets yet.")
		return
	}

	fmt.Printf("\n%-8s %6s %6s %6s %6s %8s %8s\n",
		"CONF", "BETS", "WINS", "LOSS", "PUSH", "WIN%", "UNITS")
	var total ledger.TierSummary
	for _, t := range tiers {
		fmt.Printf("%-8s %6d %6d %6d %6d %7.1f%% %+8.2f\n",
			t.Confidence, t.Bets, t.Wins, t.Losses, t.Pushes, winPct(t), t.Units)
		total.Bets += t.Bets
		total.Wins += t.Wins
		total.Losses += t.Losses
		total.Pushes += t.Pushes
		total.Units += t.Units
	}
	fmt.Printf("%-8s %6d %6d %6d %6d %7.1f%% %+8.2f\n\n",
		"TOTAL", total.Bets, total.Wins, total.Losses, total.Pushes, winPct(total), total.Units)
}

func winPct(t ledger.TierSummary) float64 {
	decided := t.Wins + t.Losses
	if decided == 0 {
		return 0
	}
	return 100 * float64(t.Wins) / float64(decided)
}
