package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charleschow/sog-edge/internal/core/edge"
	"github.com/charleschow/sog-edge/internal/telemetry"

	_ "modernc.org/sqlite"
)

// Store persists predictions in SQLite. Same single-writer WAL setup as
// the observation store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			game_id         INTEGER NOT NULL,
			player_id       INTEGER NOT NULL,
			player_name     TEXT    NOT NULL,
			team_abbrev     TEXT    NOT NULL,
			opponent_abbrev TEXT    NOT NULL,
			game_date       TEXT    NOT NULL,
			line            REAL    NOT NULL,
			over_odds       INTEGER,
			under_odds      INTEGER,
			bookmaker       TEXT    NOT NULL,
			prediction      REAL    NOT NULL,
			recommendation  TEXT    NOT NULL,
			model_prob      REAL,
			implied_prob    REAL,
			true_edge       REAL,
			confidence      TEXT    NOT NULL,
			run_id          TEXT    NOT NULL,
			analyzed_at     TEXT    NOT NULL,
			result          TEXT    NOT NULL DEFAULT 'PENDING',
			actual_shots    INTEGER,
			units_won       REAL,
			verified_at     TEXT,
			PRIMARY KEY (game_id, player_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pred_date_result ON predictions(game_date, result)`,
		`CREATE INDEX IF NOT EXISTS idx_pred_run ON predictions(run_id)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init ledger schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Upsert writes predictions keyed on (game_id, player_id). A later
// analysis of the same prop replaces the earlier row and resets its
// settlement to PENDING; a stale write (older analyzed_at) is a no-op.
func (s *Store) Upsert(preds []Prediction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for _, p := range preds {
		res, err := tx.Exec(
			`INSERT INTO predictions (
				game_id, player_id, player_name, team_abbrev, opponent_abbrev,
				game_date, line, over_odds, under_odds, bookmaker, prediction,
				recommendation, model_prob, implied_prob, true_edge, confidence,
				run_id, analyzed_at, result
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,'PENDING')
			ON CONFLICT (game_id, player_id) DO UPDATE SET
				player_name     = excluded.player_name,
				team_abbrev     = excluded.team_abbrev,
				opponent_abbrev = excluded.opponent_abbrev,
				game_date       = excluded.game_date,
				line            = excluded.line,
				over_odds       = excluded.over_odds,
				under_odds      = excluded.under_odds,
				bookmaker       = excluded.bookmaker,
				prediction      = excluded.prediction,
				recommendation  = excluded.recommendation,
				model_prob      = excluded.model_prob,
				implied_prob    = excluded.implied_prob,
				true_edge       = excluded.true_edge,
				confidence      = excluded.confidence,
				run_id          = excluded.run_id,
				analyzed_at     = excluded.analyzed_at,
				result          = 'PENDING',
				actual_shots    = NULL,
				units_won       = NULL,
				verified_at     = NULL
			WHERE excluded.analyzed_at >= predictions.analyzed_at`,
			p.GameID, p.PlayerID, p.PlayerName, p.TeamAbbrev, p.OpponentAbbrev,
			p.GameDate.Format("2006-01-02"), p.Line, p.OverOdds, p.UnderOdds,
			p.Bookmaker, p.Prediction, string(p.Recommendation),
			p.ModelProb, p.ImpliedProb, p.TrueEdge, string(p.Confidence),
			p.RunID, p.AnalyzedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return written, fmt.Errorf("upsert prediction %d/%d: %w", p.GameID, p.PlayerID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			written++
			telemetry.Metrics.LedgerUpserts.Inc()
		}
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("commit upsert: %w", err)
	}
	return written, nil
}

// Unverified returns the rows for one game date still awaiting a usable
// settlement. UNKNOWN rows stay in the queue: a boxscore feed gap is
// often transient, and a later pass may find the player.
func (s *Store) Unverified(date time.Time) ([]Prediction, error) {
	return s.query(`WHERE game_date = ? AND result IN ('PENDING','UNKNOWN') ORDER BY game_id, player_id`,
		date.Format("2006-01-02"))
}

// Settled returns every terminal non-UNKNOWN row, chronological. Feed
// for profit reports and threshold backtests.
func (s *Store) Settled() ([]Prediction, error) {
	return s.query(`WHERE result IN ('WIN','LOSS','PUSH') ORDER BY game_date, game_id, player_id`)
}

// MarkVerified records a prediction's settlement.
func (s *Store) MarkVerified(gameID, playerID int64, result Result, actualShots *int, unitsWon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`UPDATE predictions
		 SET result = ?, actual_shots = ?, units_won = ?, verified_at = ?
		 WHERE game_id = ? AND player_id = ?`,
		string(result), actualShots, unitsWon,
		time.Now().UTC().Format(time.RFC3339), gameID, playerID,
	)
	if err != nil {
		return fmt.Errorf("mark verified %d/%d: %w", gameID, playerID, err)
	}
	return nil
}

// TierSummary aggregates settled performance for one confidence tier.
type TierSummary struct {
	Confidence string
	Bets       int
	Wins       int
	Losses     int
	Pushes     int
	Units      float64
}

// Summary breaks settled BET rows down by confidence tier.
func (s *Store) Summary() ([]TierSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT confidence,
			COUNT(*),
			SUM(CASE WHEN result = 'WIN'  THEN 1 ELSE 0 END),
			SUM(CASE WHEN result = 'LOSS' THEN 1 ELSE 0 END),
			SUM(CASE WHEN result = 'PUSH' THEN 1 ELSE 0 END),
			COALESCE(SUM(units_won), 0)
		 FROM predictions
		 WHERE recommendation != 'NO BET' AND result IN ('WIN','LOSS','PUSH')
		 GROUP BY confidence
		 ORDER BY confidence`)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var out []TierSummary
	for rows.Next() {
		var t TierSummary
		if err := rows.Scan(&t.Confidence, &t.Bets, &t.Wins, &t.Losses, &t.Pushes, &t.Units); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) query(clause string, args ...any) ([]Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT
		game_id, player_id, player_name, team_abbrev, opponent_abbrev,
		game_date, line, over_odds, under_odds, bookmaker, prediction,
		recommendation, model_prob, implied_prob, true_edge, confidence,
		run_id, analyzed_at, result, actual_shots, units_won, verified_at
	FROM predictions `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		var (
			p                      Prediction
			dateStr, analyzedStr   string
			rec, conf, result      string
			overOdds, underOdds        sql.NullInt64
			modelP, impliedP, trueEdge sql.NullFloat64
			actual                     sql.NullInt64
			units                      sql.NullFloat64
			verified                   sql.NullString
		)
		err := rows.Scan(
			&p.GameID, &p.PlayerID, &p.PlayerName, &p.TeamAbbrev, &p.OpponentAbbrev,
			&dateStr, &p.Line, &overOdds, &underOdds, &p.Bookmaker, &p.Prediction,
			&rec, &modelP, &impliedP, &trueEdge, &conf,
			&p.RunID, &analyzedStr, &result, &actual, &units, &verified,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}

		p.GameDate, err = time.Parse("2006-01-02", strings.TrimSpace(dateStr))
		if err != nil {
			return nil, fmt.Errorf("stored game date: %w", err)
		}
		p.AnalyzedAt, err = time.Parse(time.RFC3339, analyzedStr)
		if err != nil {
			return nil, fmt.Errorf("stored analyzed_at: %w", err)
		}
		p.Recommendation = edge.Recommendation(rec)
		p.Confidence = edge.Confidence(conf)
		p.Result = Result(result)
		p.OverOdds = nullableInt(overOdds)
		p.UnderOdds = nullableInt(underOdds)
		p.ModelProb = nullableFloat(modelP)
		p.ImpliedProb = nullableFloat(impliedP)
		p.TrueEdge = nullableFloat(trueEdge)
		p.ActualShots = nullableInt(actual)
		p.UnitsWon = nullableFloat(units)
		if verified.Valid {
			if t, err := time.Parse(time.RFC3339, verified.String); err == nil {
				p.VerifiedAt = &t
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
