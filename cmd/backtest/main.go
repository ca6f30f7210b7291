// Command backtest sweeps minimum-edge thresholds over the settled
// ledger to show where the model's edge actually paid.
package main

import (
	"fmt"
	"os"

	"github.com/charleschow/sog-edge/internal/config"
	"github.com/charleschow/sog-edge/internal/core/edge"
	"github.com/charleschow/sog-edge/internal/core/ledger"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

var edgeThresholds = []float64{0, 2.5, 5, 7.5, 10, 12.5, 15}

type bucketStats struct {
	bets  int
	wins  int
	units float64
}

func lineBucket(line float64) string {
	switch {
	case line <= 1.5:
		return "<=1.5"
	case line <= 2.5:
		return "  2.5"
	case line <= 3.5:
		return "  3.5"
	default:
		return ">=4.5"
	}
}

var bucketOrder = []string{"<=1.5", "  2.5", "  3.5", ">=4.5"}

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	store, err := ledger.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("backtest: open ledger: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	rows, err := store.Settled()
	if err != nil {
		telemetry.Errorf("backtest: %v", err)
		os.Exit(1)
	}

	// Only rows that were actual bets with a known edge can be replayed.
	var bets []ledger.Prediction
	for _, p := range rows {
		if p.Recommendation != edge.NoBet && p.TrueEdge != nil && p.UnitsWon != nil {
			bets = append(bets, p)
		}
	}
	if len(bets) == 0 {
		fmt.Println("No settled bets to backtest.")
		return
	}

	fmt.Printf("\nSettled bets: %d\n", len(bets))
	fmt.Printf("\n%-10s %6s %6s %6s %8s %8s\n",
		"MIN EDGE", "BETS", "WINS", "LOSS", "WIN%", "UNITS")
	for _, th := range edgeThresholds {
		runThreshold(bets, th)
	}

	printLineBuckets(bets)
}

func runThreshold(bets []ledger.Prediction, minEdge float64) {
	var n, wins, losses int
	var units float64
	for _, p := range bets {
		if *p.TrueEdge < minEdge {
			continue
		}
		n++
		units += *p.UnitsWon
		switch p.Result {
		case ledger.ResultWin:
			wins++
		case ledger.ResultLoss:
			losses++
		}
	}
	if n == 0 {
		fmt.Printf("%9.1f%% %6s no bets clear this threshold\n", minEdge, "-")
		return
	}
	winPct := 0.0
	if wins+losses > 0 {
		winPct = 100 * float64(wins) / float64(wins+losses)
	}
	fmt.Printf("%9.1f%% %6d %6d %6d %7.1f%% %+8.2f\n", minEdge, n, wins, losses, winPct, units)
}

func printLineBuckets(bets []ledger.Prediction) {
	buckets := make(map[string]*bucketStats)
	for _, b := range bucketOrder {
		buckets[b] = &bucketStats{}
	}
	for _, p := range bets {
		b := buckets[lineBucket(p.Line)]
		b.bets++
		b.units += *p.UnitsWon
		if p.Result == ledger.ResultWin {
			b.wins++
		}
	}

	fmt.Printf("\n%-6s %6s %6s %8s\n", "LINE", "BETS", "WINS", "UNITS")
	for _, name := range bucketOrder {
		b := buckets[name]
		if b.bets == 0 {
			continue
		}
		fmt.Printf("%-6s %6d %6d %+8.2f\n", name, b.bets, b.wins, b.units)
	}
	fmt.Println()
}
