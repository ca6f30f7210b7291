package teamstats

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists team game records keyed by (team_abbrev, game_date).
// Upsert semantics: re-ingesting a game overwrites the row in place.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS team_games (
			team_abbrev   TEXT    NOT NULL,
			game_date     TEXT    NOT NULL,
			game_id       INTEGER NOT NULL,
			home_away     INTEGER NOT NULL,
			shots_for     INTEGER NOT NULL,
			shots_against INTEGER NOT NULL,
			goals_for     INTEGER NOT NULL,
			goals_against INTEGER NOT NULL,
			PRIMARY KEY (team_abbrev, game_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tg_game ON team_games(game_id)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// UpsertBatch writes team game rows, replacing any existing row for the
// same (team, date).
func (s *Store) UpsertBatch(games []TeamGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	for _, g := range games {
		_, err := tx.Exec(
			`INSERT INTO team_games (
				team_abbrev, game_date, game_id, home_away,
				shots_for, shots_against, goals_for, goals_against
			) VALUES (?,?,?,?,?,?,?,?)
			ON CONFLICT (team_abbrev, game_date) DO UPDATE SET
				game_id = excluded.game_id,
				home_away = excluded.home_away,
				shots_for = excluded.shots_for,
				shots_against = excluded.shots_against,
				goals_for = excluded.goals_for,
				goals_against = excluded.goals_against`,
			g.TeamAbbrev, g.GameDate.Format("2006-01-02"), g.GameID, boolToInt(g.Home),
			g.ShotsFor, g.ShotsAgainst, g.GoalsFor, g.GoalsAgainst,
		)
		if err != nil {
			return fmt.Errorf("upsert team game %s/%s: %w", g.TeamAbbrev, g.GameDate.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// All returns every team game in series scan order.
func (s *Store) All() ([]TeamGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT
		team_abbrev, game_date, game_id, home_away,
		shots_for, shots_against, goals_for, goals_against
	FROM team_games
	ORDER BY team_abbrev ASC, game_date ASC, game_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query team games: %w", err)
	}
	defer rows.Close()

	var out []TeamGame
	for rows.Next() {
		var (
			g       TeamGame
			dateStr string
			home    int
		)
		err := rows.Scan(
			&g.TeamAbbrev, &dateStr, &g.GameID, &home,
			&g.ShotsFor, &g.ShotsAgainst, &g.GoalsFor, &g.GoalsAgainst,
		)
		if err != nil {
			return nil, fmt.Errorf("scan team game: %w", err)
		}
		g.GameDate, err = time.Parse("2006-01-02", strings.TrimSpace(dateStr))
		if err != nil {
			return nil, fmt.Errorf("stored game date: %w", err)
		}
		g.Home = home != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
