package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/sog-edge/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/sog-edge/internal/adapters/outbound/oddsapi"
	"github.com/charleschow/sog-edge/internal/core/edge"
	"github.com/charleschow/sog-edge/internal/core/features"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/model"
	"github.com/charleschow/sog-edge/internal/core/names"
)

type fakeSchedule struct {
	games []nhlapi.ScheduledGame
}

func (f *fakeSchedule) Schedule(context.Context, time.Time) ([]nhlapi.ScheduledGame, error) {
	return f.games, nil
}

type fakeProps struct {
	events []oddsapi.Event
	props  map[string][]oddsapi.PropLine
}

func (f *fakeProps) Events(context.Context) ([]oddsapi.Event, error) { return f.events, nil }

func (f *fakeProps) EventProps(_ context.Context, eventID string) ([]oddsapi.PropLine, error) {
	return f.props[eventID], nil
}

// constantModel predicts the same shot count for every input.
func constantModel(value float64) *model.Artifact {
	return &model.Artifact{
		FeatureColumns: features.FeatureColumns,
		Base:           value,
		LearningRate:   1,
		Trees:          []*model.Tree{{Nodes: []model.Node{{Feature: -1, Value: 0}}}},
	}
}

func playerHistory(playerID int64, team, opp string, games, shots int) []gamelog.Observation {
	obs := make([]gamelog.Observation, games)
	for i := range obs {
		obs[i] = gamelog.Observation{
			PlayerID: playerID, GameID: int64(2026020000 + i),
			GameDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			TeamAbbrev: team, OpponentAbbrev: opp,
			Shots: shots, TOIMinutes: 18,
		}
	}
	return obs
}

func TestAnalyzeDateProducesLedgerRows(t *testing.T) {
	date := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	resolver := names.NewResolver()
	resolver.Add("Auston Matthews", 100)
	resolver.Add("Nick Suzuki", 200)

	a := &Analyzer{
		NHL: &fakeSchedule{games: []nhlapi.ScheduledGame{{
			GameID: 2026020500, GameDate: date,
			HomeAbbrev: "TOR", AwayAbbrev: "MTL", State: "FUT",
		}}},
		Odds: &fakeProps{
			events: []oddsapi.Event{{
				ID: "ev1", HomeTeam: "Toronto Maple Leafs", AwayTeam: "Montreal Canadiens",
			}},
			props: map[string][]oddsapi.PropLine{"ev1": {
				{PlayerName: "Auston Matthews", Line: 2.5, OverOdds: intPtr(-120), UnderOdds: intPtr(-110)},
				{PlayerName: "Nick Suzuki", Line: 2.5, OverOdds: intPtr(100), UnderOdds: intPtr(-130)},
				{PlayerName: "Nobody Mapped", Line: 1.5, OverOdds: intPtr(100), UnderOdds: intPtr(-120)},
			}},
		},
		Artifact:  constantModel(3.4),
		Resolver:  resolver,
		Params:    edge.DefaultParams,
		Bookmaker: "fanduel",
		Workers:   2,
	}

	obs := append(
		playerHistory(100, "TOR", "MTL", 10, 4),
		playerHistory(200, "MTL", "TOR", 10, 2)...,
	)

	preds, err := a.AnalyzeDate(context.Background(), date, obs)
	require.NoError(t, err)
	require.Len(t, preds, 2) // unmapped name skipped

	byPlayer := map[int64]int{}
	for i, p := range preds {
		byPlayer[p.PlayerID] = i

		assert.Equal(t, int64(2026020500), p.GameID)
		assert.True(t, p.GameDate.Equal(date))
		assert.Equal(t, "fanduel", p.Bookmaker)
		assert.NotEmpty(t, p.RunID)
		assert.InDelta(t, 3.4, p.Prediction, 1e-9)
		assert.Equal(t, edge.BetOver, p.Recommendation)
		assert.NotNil(t, p.TrueEdge)
	}

	matthews := preds[byPlayer[100]]
	assert.Equal(t, "TOR", matthews.TeamAbbrev)
	assert.Equal(t, "MTL", matthews.OpponentAbbrev)

	suzuki := preds[byPlayer[200]]
	assert.Equal(t, "MTL", suzuki.TeamAbbrev)
	assert.Equal(t, "TOR", suzuki.OpponentAbbrev)

	// Every row of one run carries the same run id.
	assert.Equal(t, matthews.RunID, suzuki.RunID)
}

func TestAnalyzeDateSkipsUnknownHistory(t *testing.T) {
	date := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	resolver := names.NewResolver()
	resolver.Add("Auston Matthews", 100)

	a := &Analyzer{
		NHL: &fakeSchedule{games: []nhlapi.ScheduledGame{{
			GameID: 2026020500, GameDate: date, HomeAbbrev: "TOR", AwayAbbrev: "MTL",
		}}},
		Odds: &fakeProps{
			events: []oddsapi.Event{{ID: "ev1", HomeTeam: "Toronto Maple Leafs", AwayTeam: "Montreal Canadiens"}},
			props: map[string][]oddsapi.PropLine{"ev1": {
				{PlayerName: "Auston Matthews", Line: 2.5, OverOdds: intPtr(-120), UnderOdds: intPtr(-110)},
			}},
		},
		Artifact: constantModel(3.4),
		Resolver: resolver,
		Params:   edge.DefaultParams,
	}

	// Mapped name, but no ingested games for the player.
	preds, err := a.AnalyzeDate(context.Background(), date, nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestAnalyzeDateSkipsTradedPlayer(t *testing.T) {
	date := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	resolver := names.NewResolver()
	resolver.Add("Auston Matthews", 100)
	resolver.Add("Brad Marchand", 300)

	a := &Analyzer{
		NHL: &fakeSchedule{games: []nhlapi.ScheduledGame{{
			GameID: 2026020500, GameDate: date, HomeAbbrev: "TOR", AwayAbbrev: "MTL",
		}}},
		Odds: &fakeProps{
			events: []oddsapi.Event{{ID: "ev1", HomeTeam: "Toronto Maple Leafs", AwayTeam: "Montreal Canadiens"}},
			props: map[string][]oddsapi.PropLine{"ev1": {
				{PlayerName: "Auston Matthews", Line: 2.5, OverOdds: intPtr(-120), UnderOdds: intPtr(-110)},
				{PlayerName: "Brad Marchand", Line: 2.5, OverOdds: intPtr(-105), UnderOdds: intPtr(-115)},
			}},
		},
		Artifact: constantModel(3.4),
		Resolver: resolver,
		Params:   edge.DefaultParams,
	}

	// Marchand's log still shows his old club, which plays neither side of
	// this game. The row must be skipped, never scored against a guessed
	// opponent.
	obs := append(
		playerHistory(100, "TOR", "MTL", 10, 4),
		playerHistory(300, "BOS", "OTT", 10, 3)...,
	)

	preds, err := a.AnalyzeDate(context.Background(), date, obs)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, int64(100), preds[0].PlayerID)
}

func TestAnalyzeDateNoGames(t *testing.T) {
	a := &Analyzer{
		NHL:      &fakeSchedule{},
		Odds:     &fakeProps{},
		Artifact: constantModel(3.0),
		Resolver: names.NewResolver(),
		Params:   edge.DefaultParams,
	}
	preds, err := a.AnalyzeDate(context.Background(), time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}
