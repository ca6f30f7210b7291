package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/sog-edge/internal/core/edge"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func floatPtr(v float64) *float64 { return &v }

func predFixture(gameID, playerID int64, analyzedAt time.Time) Prediction {
	return Prediction{
		GameID: gameID, PlayerID: playerID,
		PlayerName: "Auston Matthews", TeamAbbrev: "TOR", OpponentAbbrev: "MTL",
		GameDate:   time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Line:       3.5, OverOdds: intPtr(-115), UnderOdds: intPtr(-105),
		Bookmaker: "fanduel", Prediction: 4.1,
		Recommendation: edge.BetOver,
		ModelProb:      floatPtr(0.62), ImpliedProb: floatPtr(0.5349), TrueEdge: floatPtr(8.51),
		Confidence: edge.ConfidenceMedium,
		RunID:      "run-1", AnalyzedAt: analyzedAt,
	}
}

func TestUpsertDeduplicates(t *testing.T) {
	s := testStore(t)
	t0 := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)

	_, err := s.Upsert([]Prediction{predFixture(2026020001, 100, t0)})
	require.NoError(t, err)

	// Re-analysis of the same prop replaces the row.
	later := predFixture(2026020001, 100, t0.Add(time.Hour))
	later.Line = 2.5
	later.RunID = "run-2"
	_, err = s.Upsert([]Prediction{later})
	require.NoError(t, err)

	rows, err := s.Unverified(later.GameDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.5, rows[0].Line)
	assert.Equal(t, "run-2", rows[0].RunID)
}

func TestUpsertIgnoresStaleWrite(t *testing.T) {
	s := testStore(t)
	t0 := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)

	current := predFixture(2026020001, 100, t0)
	_, err := s.Upsert([]Prediction{current})
	require.NoError(t, err)

	stale := predFixture(2026020001, 100, t0.Add(-time.Hour))
	stale.Line = 1.5
	_, err = s.Upsert([]Prediction{stale})
	require.NoError(t, err)

	rows, err := s.Unverified(current.GameDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.5, rows[0].Line)
}

func TestUpsertResetsSettlement(t *testing.T) {
	s := testStore(t)
	t0 := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)

	p := predFixture(2026020001, 100, t0)
	_, err := s.Upsert([]Prediction{p})
	require.NoError(t, err)

	actual := 5
	require.NoError(t, s.MarkVerified(p.GameID, p.PlayerID, ResultWin, &actual, 0.87))

	// Settled rows leave the pending queue.
	rows, err := s.Unverified(p.GameDate)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// A fresh analysis reopens the row.
	_, err = s.Upsert([]Prediction{predFixture(2026020001, 100, t0.Add(2 * time.Hour))})
	require.NoError(t, err)

	rows, err = s.Unverified(p.GameDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ResultPending, rows[0].Result)
	assert.Nil(t, rows[0].ActualShots)
	assert.Nil(t, rows[0].UnitsWon)
}

func TestUnknownRowsStayRetryable(t *testing.T) {
	s := testStore(t)
	t0 := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)

	p := predFixture(2026020001, 100, t0)
	_, err := s.Upsert([]Prediction{p})
	require.NoError(t, err)

	// A boxscore gap marks the row UNKNOWN; it must come back on the next
	// verification pass instead of being stranded.
	require.NoError(t, s.MarkVerified(p.GameID, p.PlayerID, ResultUnknown, nil, 0))

	rows, err := s.Unverified(p.GameDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ResultUnknown, rows[0].Result)

	// Once the stat line turns up, the row settles and leaves the queue.
	four := 4
	require.NoError(t, s.MarkVerified(p.GameID, p.PlayerID, ResultWin, &four, 0.87))

	rows, err = s.Unverified(p.GameDate)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRoundTripFields(t *testing.T) {
	s := testStore(t)
	p := predFixture(2026020001, 100, time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC))

	_, err := s.Upsert([]Prediction{p})
	require.NoError(t, err)

	rows, err := s.Unverified(p.GameDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, p.PlayerName, got.PlayerName)
	assert.Equal(t, *p.OverOdds, *got.OverOdds)
	assert.Equal(t, *p.UnderOdds, *got.UnderOdds)
	assert.InDelta(t, *p.TrueEdge, *got.TrueEdge, 1e-9)
	assert.Equal(t, p.Recommendation, got.Recommendation)
	assert.Equal(t, p.Confidence, got.Confidence)
	assert.True(t, p.AnalyzedAt.Equal(got.AnalyzedAt))
}

func TestSettledAndSummary(t *testing.T) {
	s := testStore(t)
	t0 := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)

	win := predFixture(2026020001, 100, t0)
	loss := predFixture(2026020001, 101, t0)
	loss.Confidence = edge.ConfidenceHigh
	unknown := predFixture(2026020001, 102, t0)

	_, err := s.Upsert([]Prediction{win, loss, unknown})
	require.NoError(t, err)

	four, two := 4, 2
	require.NoError(t, s.MarkVerified(2026020001, 100, ResultWin, &four, 0.87))
	require.NoError(t, s.MarkVerified(2026020001, 101, ResultLoss, &two, -1))
	require.NoError(t, s.MarkVerified(2026020001, 102, ResultUnknown, nil, 0))

	settled, err := s.Settled()
	require.NoError(t, err)
	assert.Len(t, settled, 2) // UNKNOWN stays out of performance data

	tiers, err := s.Summary()
	require.NoError(t, err)
	require.Len(t, tiers, 2)

	byConf := map[string]TierSummary{}
	for _, tier := range tiers {
		byConf[tier.Confidence] = tier
	}
	assert.Equal(t, 1, byConf["MEDIUM"].Wins)
	assert.InDelta(t, 0.87, byConf["MEDIUM"].Units, 1e-9)
	assert.Equal(t, 1, byConf["HIGH"].Losses)
	assert.InDelta(t, -1.0, byConf["HIGH"].Units, 1e-9)
}
