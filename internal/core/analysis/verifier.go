package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/sog-edge/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/sog-edge/internal/core/ledger"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

// BoxscoreSource is the slice of the NHL client the verifier needs.
type BoxscoreSource interface {
	GameBoxscore(ctx context.Context, gameID int64) (*nhlapi.Boxscore, error)
}

// Ledger is the settlement surface of the prediction store.
type Ledger interface {
	Unverified(date time.Time) ([]ledger.Prediction, error)
	MarkVerified(gameID, playerID int64, result ledger.Result, actualShots *int, unitsWon float64) error
}

// Verifier settles pending predictions against final boxscores.
type Verifier struct {
	NHL     BoxscoreSource
	Store   Ledger
	Workers int
}

// VerifyStats summarizes one verification pass.
type VerifyStats struct {
	Checked      int
	Settled      int
	Unknown      int
	StillPending int
	Units        float64
}

// VerifyDate settles every unresolved prediction for one game date,
// PENDING and UNKNOWN rows alike. Games that are not final yet leave
// their rows PENDING for the next pass; a player absent from a final
// boxscore is marked UNKNOWN at zero units and retried next pass.
func (v *Verifier) VerifyDate(ctx context.Context, date time.Time) (VerifyStats, error) {
	rows, err := v.Store.Unverified(date)
	if err != nil {
		return VerifyStats{}, fmt.Errorf("verify: load pending: %w", err)
	}
	if len(rows) == 0 {
		return VerifyStats{}, nil
	}

	byGame := make(map[int64][]ledger.Prediction)
	for _, p := range rows {
		byGame[p.GameID] = append(byGame[p.GameID], p)
	}

	boxscores, err := v.fetchBoxscores(ctx, byGame)
	if err != nil {
		return VerifyStats{}, err
	}

	stats := VerifyStats{Checked: len(rows)}
	for gameID, preds := range byGame {
		box, ok := boxscores[gameID]
		if !ok || !box.Final() {
			stats.StillPending += len(preds)
			continue
		}
		for _, p := range preds {
			actual, found := box.SOG[p.PlayerID]
			if !found {
				telemetry.Metrics.ResultsUnknown.Inc()
				if err := v.Store.MarkVerified(p.GameID, p.PlayerID, ledger.ResultUnknown, nil, 0); err != nil {
					return stats, fmt.Errorf("verify: mark unknown %d/%d: %w", p.GameID, p.PlayerID, err)
				}
				stats.Unknown++
				continue
			}

			result := ledger.Settle(p.Recommendation, p.Line, actual)
			units := ledger.Units(result, ledger.StakedOdds(p))
			if err := v.Store.MarkVerified(p.GameID, p.PlayerID, result, &actual, units); err != nil {
				return stats, fmt.Errorf("verify: mark %d/%d: %w", p.GameID, p.PlayerID, err)
			}
			telemetry.Metrics.ResultsVerified.Inc()
			stats.Settled++
			stats.Units += units
		}
	}

	telemetry.Infof("verify: %s settled=%d unknown=%d pending=%d units=%+.2f",
		date.Format("2006-01-02"), stats.Settled, stats.Unknown, stats.StillPending, stats.Units)
	return stats, nil
}

// fetchBoxscores pulls each game's boxscore concurrently. A single
// fetch failure leaves that game's rows pending rather than failing the
// whole pass.
func (v *Verifier) fetchBoxscores(ctx context.Context, byGame map[int64][]ledger.Prediction) (map[int64]*nhlapi.Boxscore, error) {
	workers := v.Workers
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	out := make(map[int64]*nhlapi.Boxscore, len(byGame))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for gameID := range byGame {
		gameID := gameID
		eg.Go(func() error {
			box, err := v.NHL.GameBoxscore(ctx, gameID)
			if err != nil {
				telemetry.Warnf("verify: boxscore %d: %v", gameID, err)
				return nil
			}
			mu.Lock()
			out[gameID] = box
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("verify: fetch boxscores: %w", err)
	}
	return out, nil
}
