package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/sog-edge/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/sog-edge/internal/core/edge"
	"github.com/charleschow/sog-edge/internal/core/ledger"
)

type fakeBoxscores struct {
	byGame map[int64]*nhlapi.Boxscore
	errs   map[int64]error
}

func (f *fakeBoxscores) GameBoxscore(_ context.Context, gameID int64) (*nhlapi.Boxscore, error) {
	if err, ok := f.errs[gameID]; ok {
		return nil, err
	}
	box, ok := f.byGame[gameID]
	if !ok {
		return nil, errors.New("no such game")
	}
	return box, nil
}

type fakeLedger struct {
	pending []ledger.Prediction
	marked  map[[2]int64]struct {
		result ledger.Result
		actual *int
		units  float64
	}
}

func (f *fakeLedger) Unverified(time.Time) ([]ledger.Prediction, error) {
	return f.pending, nil
}

func (f *fakeLedger) MarkVerified(gameID, playerID int64, result ledger.Result, actual *int, units float64) error {
	if f.marked == nil {
		f.marked = make(map[[2]int64]struct {
			result ledger.Result
			actual *int
			units  float64
		})
	}
	f.marked[[2]int64{gameID, playerID}] = struct {
		result ledger.Result
		actual *int
		units  float64
	}{result, actual, units}
	return nil
}

func intPtr(v int) *int { return &v }

func pendingBet(gameID, playerID int64, rec edge.Recommendation, line float64, odds int) ledger.Prediction {
	return ledger.Prediction{
		GameID: gameID, PlayerID: playerID,
		GameDate:       time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Line:           line,
		OverOdds:       intPtr(odds),
		UnderOdds:      intPtr(odds),
		Recommendation: rec,
		Result:         ledger.ResultPending,
	}
}

func finalBox(gameID int64, sog map[int64]int) *nhlapi.Boxscore {
	return &nhlapi.Boxscore{GameID: gameID, GameState: "OFF", SOG: sog}
}

func TestVerifyDateSettles(t *testing.T) {
	store := &fakeLedger{pending: []ledger.Prediction{
		pendingBet(1, 100, edge.BetOver, 2.5, -110),  // 4 shots: win
		pendingBet(1, 101, edge.BetUnder, 2.5, -110), // 3 shots: loss
		pendingBet(1, 102, edge.BetOver, 2.5, 150),   // scratched: unknown
	}}
	v := &Verifier{
		NHL: &fakeBoxscores{byGame: map[int64]*nhlapi.Boxscore{
			1: finalBox(1, map[int64]int{100: 4, 101: 3}),
		}},
		Store: store,
	}

	stats, err := v.VerifyDate(context.Background(), time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Checked)
	assert.Equal(t, 2, stats.Settled)
	assert.Equal(t, 1, stats.Unknown)
	assert.Equal(t, 0, stats.StillPending)

	win := store.marked[[2]int64{1, 100}]
	assert.Equal(t, ledger.ResultWin, win.result)
	require.NotNil(t, win.actual)
	assert.Equal(t, 4, *win.actual)
	assert.InDelta(t, 100.0/110.0, win.units, 1e-9)

	loss := store.marked[[2]int64{1, 101}]
	assert.Equal(t, ledger.ResultLoss, loss.result)
	assert.Equal(t, -1.0, loss.units)

	unknown := store.marked[[2]int64{1, 102}]
	assert.Equal(t, ledger.ResultUnknown, unknown.result)
	assert.Nil(t, unknown.actual)
	assert.Equal(t, 0.0, unknown.units)

	assert.InDelta(t, 100.0/110.0-1.0, stats.Units, 1e-9)
}

func TestVerifyDateLeavesLiveGamesPending(t *testing.T) {
	store := &fakeLedger{pending: []ledger.Prediction{
		pendingBet(1, 100, edge.BetOver, 2.5, -110),
	}}
	v := &Verifier{
		NHL: &fakeBoxscores{byGame: map[int64]*nhlapi.Boxscore{
			1: {GameID: 1, GameState: "LIVE", SOG: map[int64]int{100: 2}},
		}},
		Store: store,
	}

	stats, err := v.VerifyDate(context.Background(), time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StillPending)
	assert.Empty(t, store.marked)
}

func TestVerifyDateToleratesFetchFailure(t *testing.T) {
	store := &fakeLedger{pending: []ledger.Prediction{
		pendingBet(1, 100, edge.BetOver, 2.5, -110),
		pendingBet(2, 200, edge.BetOver, 2.5, -110),
	}}
	v := &Verifier{
		NHL: &fakeBoxscores{
			byGame: map[int64]*nhlapi.Boxscore{2: finalBox(2, map[int64]int{200: 5})},
			errs:   map[int64]error{1: errors.New("upstream 503")},
		},
		Store: store,
	}

	stats, err := v.VerifyDate(context.Background(), time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Settled)
	assert.Equal(t, 1, stats.StillPending)
}
