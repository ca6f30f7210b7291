// Command analyze scores one day's shots-on-goal prop slate and records
// every recommendation in the ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/charleschow/sog-edge/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/sog-edge/internal/adapters/outbound/oddsapi"
	"github.com/charleschow/sog-edge/internal/config"
	"github.com/charleschow/sog-edge/internal/core/analysis"
	"github.com/charleschow/sog-edge/internal/core/edge"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/ledger"
	"github.com/charleschow/sog-edge/internal/core/model"
	"github.com/charleschow/sog-edge/internal/core/names"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

func main() {
	dateFlag := flag.String("date", time.Now().UTC().Format("2006-01-02"), "slate date (YYYY-MM-DD)")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if cfg.OddsAPIKey == "" {
		telemetry.Errorf("analyze: ODDS_API_KEY not set")
		os.Exit(1)
	}

	date, err := gamelog.ParseDate(*dateFlag)
	if err != nil {
		telemetry.Errorf("analyze: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	artifact, err := model.Load(cfg.ModelPath)
	if err != nil {
		telemetry.Errorf("analyze: load model: %v", err)
		os.Exit(1)
	}

	resolver, err := names.LoadPlayerMap(cfg.PlayerMapPath)
	if err != nil {
		telemetry.Errorf("analyze: load player map: %v", err)
		os.Exit(1)
	}

	params, _, err := config.LoadEdgeLimits(cfg.EdgeLimitsPath)
	if err != nil {
		telemetry.Errorf("analyze: edge limits: %v", err)
		os.Exit(1)
	}

	store, err := gamelog.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("analyze: open store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	obs, err := store.All()
	if err != nil {
		telemetry.Errorf("analyze: load observations: %v", err)
		os.Exit(1)
	}

	analyzer := &analysis.Analyzer{
		NHL:       nhlapi.NewClient(cfg.NHLBaseURL),
		Odds:      oddsapi.NewClient(cfg.OddsBaseURL, cfg.OddsAPIKey, cfg.Bookmaker),
		Artifact:  artifact,
		Resolver:  resolver,
		Params:    params,
		Bookmaker: cfg.Bookmaker,
		Workers:   cfg.FetchWorkers,
	}

	preds, err := analyzer.AnalyzeDate(ctx, date, obs)
	if err != nil {
		telemetry.Errorf("analyze: %v", err)
		os.Exit(1)
	}
	if len(preds) == 0 {
		telemetry.Infof("analyze: nothing to score for %s", *dateFlag)
		return
	}

	ledgerStore, err := ledger.Open(cfg.DBPath)
	if err != nil {
		telemetry.Errorf("analyze: open ledger: %v", err)
		os.Exit(1)
	}
	defer ledgerStore.Close()

	written, err := ledgerStore.Upsert(preds)
	if err != nil {
		telemetry.Errorf("analyze: record predictions: %v", err)
		os.Exit(1)
	}

	printSlate(preds)
	telemetry.Infof("analyze: %d props scored, %d ledger rows written, %d names unmapped",
		len(preds), written, telemetry.Metrics.PlayersUnmapped.Value())
}

// printSlate renders the slate best-edge-first; NO BET rows sink to the
// bottom.
func printSlate(preds []ledger.Prediction) {
	sorted := make([]ledger.Prediction, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool {
		ei, ej := sorted[i].TrueEdge, sorted[j].TrueEdge
		switch {
		case ei == nil:
			return false
		case ej == nil:
			return true
		default:
			return *ei > *ej
		}
	})

	fmt.Printf("\n%-24s %-4s %-5s %-7s %-6s %-10s %-7s %-6s\n",
		"PLAYER", "OPP", "LINE", "PRED", "ODDS", "CALL", "EDGE", "CONF")
	for _, p := range sorted {
		fmt.Printf("%-24s %-4s %-5.1f %-7.2f %-6s %-10s %-7s %-6s\n",
			p.PlayerName, p.OpponentAbbrev, p.Line, p.Prediction,
			edge.FormatAmericanOdds(ledger.StakedOdds(p)),
			p.Recommendation, formatEdge(p.TrueEdge), p.Confidence)
	}
	fmt.Println()
}

func formatEdge(e *float64) string {
	if e == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *e)
}
