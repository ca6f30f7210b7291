// Package analysis runs the daily slate: match scheduled games to prop
// markets, score every quoted player, classify the edge, and record the
// result in the ledger.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/charleschow/sog-edge/internal/adapters/outbound/nhlapi"
	"github.com/charleschow/sog-edge/internal/adapters/outbound/oddsapi"
	"github.com/charleschow/sog-edge/internal/core/edge"
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/ledger"
	"github.com/charleschow/sog-edge/internal/core/model"
	"github.com/charleschow/sog-edge/internal/core/names"
	"github.com/charleschow/sog-edge/internal/core/teamstats"
	"github.com/charleschow/sog-edge/internal/telemetry"
)

// ScheduleSource is the slice of the NHL client the analyzer needs.
type ScheduleSource interface {
	Schedule(ctx context.Context, date time.Time) ([]nhlapi.ScheduledGame, error)
}

// PropSource is the slice of the odds client the analyzer needs.
type PropSource interface {
	Events(ctx context.Context) ([]oddsapi.Event, error)
	EventProps(ctx context.Context, eventID string) ([]oddsapi.PropLine, error)
}

// Analyzer scores one day's prop slate against the trained model.
type Analyzer struct {
	NHL       ScheduleSource
	Odds      PropSource
	Artifact  *model.Artifact
	Resolver  *names.Resolver
	Params    edge.Params
	Bookmaker string
	Workers   int
}

// gameProps pairs a scheduled game with its quoted prop lines.
type gameProps struct {
	game  nhlapi.ScheduledGame
	props []oddsapi.PropLine
}

// AnalyzeDate runs the full slate for one date over the given observation
// history and returns the ledger rows it produced. Per-player failures
// (unmapped name, no history) skip the row and count in telemetry; only
// infrastructure failures abort the run.
func (a *Analyzer) AnalyzeDate(ctx context.Context, date time.Time, obs []gamelog.Observation) ([]ledger.Prediction, error) {
	runID := uuid.NewString()
	analyzedAt := time.Now().UTC()

	games, err := a.NHL.Schedule(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("analysis: schedule: %w", err)
	}
	if len(games) == 0 {
		telemetry.Infof("analysis: no games on %s", date.Format("2006-01-02"))
		return nil, nil
	}

	slate, err := a.fetchSlateProps(ctx, games)
	if err != nil {
		return nil, err
	}

	series := teamstats.BuildSeries(teamstats.BuildFromObservations(obs))
	logs := groupByPlayer(obs)

	var preds []ledger.Prediction
	for _, gp := range slate {
		for _, prop := range gp.props {
			p, ok := a.scoreProp(gp.game, prop, date, logs, series)
			if !ok {
				continue
			}
			p.RunID = runID
			p.AnalyzedAt = analyzedAt
			p.Bookmaker = a.Bookmaker
			preds = append(preds, p)
		}
	}

	telemetry.Infof("analysis: run %s scored %d props across %d games", runID, len(preds), len(slate))
	return preds, nil
}

// fetchSlateProps matches odds events to scheduled games by home/away
// tri-code and pulls each matched event's prop market concurrently.
func (a *Analyzer) fetchSlateProps(ctx context.Context, games []nhlapi.ScheduledGame) ([]gameProps, error) {
	events, err := a.Odds.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis: odds events: %w", err)
	}

	byMatchup := make(map[string]nhlapi.ScheduledGame, len(games))
	for _, g := range games {
		byMatchup[g.HomeAbbrev+"@"+g.AwayAbbrev] = g
	}

	type matched struct {
		game  nhlapi.ScheduledGame
		event oddsapi.Event
	}
	var targets []matched
	for _, ev := range events {
		home, okH := names.TeamAbbrev(ev.HomeTeam)
		away, okA := names.TeamAbbrev(ev.AwayTeam)
		if !okH || !okA {
			telemetry.Warnf("analysis: unmapped odds teams %q / %q", ev.HomeTeam, ev.AwayTeam)
			continue
		}
		if g, ok := byMatchup[home+"@"+away]; ok {
			targets = append(targets, matched{game: g, event: ev})
		}
	}

	workers := a.Workers
	if workers <= 0 {
		workers = 4
	}

	var (
		mu    sync.Mutex
		slate []gameProps
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, t := range targets {
		t := t
		eg.Go(func() error {
			props, err := a.Odds.EventProps(ctx, t.event.ID)
			if err != nil {
				// One event's market failing should not kill the slate.
				telemetry.Warnf("analysis: props for game %d: %v", t.game.GameID, err)
				return nil
			}
			mu.Lock()
			slate = append(slate, gameProps{game: t.game, props: props})
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("analysis: fetch props: %w", err)
	}
	return slate, nil
}

// scoreProp turns one quoted line into a ledger row, or reports it
// unscorable.
func (a *Analyzer) scoreProp(game nhlapi.ScheduledGame, prop oddsapi.PropLine, date time.Time, logs map[int64][]gamelog.Observation, series *teamstats.Series) (ledger.Prediction, bool) {
	playerID, ok := a.Resolver.Resolve(prop.PlayerName)
	if !ok {
		telemetry.Metrics.PlayersUnmapped.Inc()
		telemetry.Debugf("analysis: no player id for %q", prop.PlayerName)
		return ledger.Prediction{}, false
	}

	log := logs[playerID]
	if len(log) == 0 {
		telemetry.Metrics.PredictionsSkipped.Inc()
		return ledger.Prediction{}, false
	}

	// The player's side comes from their most recent game log row. A
	// traded player whose stored team matches neither side of this game
	// is unscorable until their log catches up.
	team := log[len(log)-1].TeamAbbrev
	var home bool
	var opponent string
	switch team {
	case game.HomeAbbrev:
		home, opponent = true, game.AwayAbbrev
	case game.AwayAbbrev:
		home, opponent = false, game.HomeAbbrev
	default:
		telemetry.Metrics.PredictionsSkipped.Inc()
		telemetry.Warnf("analysis: %q last played for %s, not in %s@%s",
			prop.PlayerName, team, game.AwayAbbrev, game.HomeAbbrev)
		return ledger.Prediction{}, false
	}

	pred, err := model.PredictUpcoming(a.Artifact, log, model.UpcomingContext{
		GameDate: date,
		Home:     home,
		Opponent: opponent,
	}, series)
	if err != nil {
		if !errors.Is(err, model.ErrNoHistory) {
			telemetry.Warnf("analysis: predict %q: %v", prop.PlayerName, err)
		}
		telemetry.Metrics.PredictionsSkipped.Inc()
		return ledger.Prediction{}, false
	}

	res := edge.Classify(pred, prop.Line, prop.OverOdds, prop.UnderOdds, a.Params)
	telemetry.Metrics.PredictionsMade.Inc()

	return ledger.Prediction{
		GameID:         game.GameID,
		PlayerID:       playerID,
		PlayerName:     prop.PlayerName,
		TeamAbbrev:     team,
		OpponentAbbrev: opponent,
		GameDate:       date,
		Line:           prop.Line,
		OverOdds:       prop.OverOdds,
		UnderOdds:      prop.UnderOdds,
		Prediction:     pred,
		Recommendation: res.Recommendation,
		ModelProb:      res.ModelProb,
		ImpliedProb:    res.ImpliedProb,
		TrueEdge:       res.TrueEdge,
		Confidence:     res.Confidence,
		Result:         ledger.ResultPending,
	}, true
}

func groupByPlayer(obs []gamelog.Observation) map[int64][]gamelog.Observation {
	logs := make(map[int64][]gamelog.Observation)
	for _, o := range obs {
		logs[o.PlayerID] = append(logs[o.PlayerID], o)
	}
	for _, log := range logs {
		gamelog.SortChronological(log)
	}
	return logs
}
