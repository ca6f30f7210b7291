package gamelog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charleschow/sog-edge/internal/telemetry"

	_ "modernc.org/sqlite"
)

// ErrDuplicateObservation indicates an append violated the (game_id,
// player_id) primary key. Observations are immutable once stored, so a
// duplicate means the store or the ingest batch is corrupt and the run
// should abort.
var ErrDuplicateObservation = errors.New("duplicate observation")

// Store is the append-only observation table. Single writer; SQLite with
// WAL and a mutex, same shape as the training snapshot stores this grew
// out of.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
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
		`CREATE TABLE IF NOT EXISTS observations (
			game_id         INTEGER NOT NULL,
			player_id       INTEGER NOT NULL,
			season_id       TEXT    NOT NULL,
			game_type       INTEGER NOT NULL,
			game_date       TEXT    NOT NULL,
			team_abbrev     TEXT    NOT NULL,
			opponent_abbrev TEXT    NOT NULL,
			home_flag       INTEGER NOT NULL,
			position_code   TEXT,
			shots           INTEGER NOT NULL,
			goals           INTEGER,
			assists         INTEGER,
			points          INTEGER,
			toi_raw         TEXT,
			toi_minutes     REAL    NOT NULL,
			PRIMARY KEY (game_id, player_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_obs_player_date ON observations(player_id, game_date, game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_obs_game ON observations(game_id)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// AppendBatch inserts observations, skipping rows whose game_id the
// player already has (ingest batches overlap at the incremental-update
// boundary). A row that matches an existing key with different contents
// is a store-corruption error and aborts the batch.
func (s *Store) AppendBatch(obs []Observation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, o := range obs {
		if err := o.Validate(); err != nil {
			telemetry.Metrics.GameLogRowsDropped.Inc()
			telemetry.Debugf("gamelog: dropping row: %v", err)
			continue
		}

		var existingShots int
		err := tx.QueryRow(
			`SELECT shots FROM observations WHERE game_id = ? AND player_id = ?`,
			o.GameID, o.PlayerID,
		).Scan(&existingShots)
		switch {
		case err == nil:
			if existingShots != o.Shots {
				return inserted, fmt.Errorf("%w: game %d player %d (stored shots=%d, incoming=%d)",
					ErrDuplicateObservation, o.GameID, o.PlayerID, existingShots, o.Shots)
			}
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return inserted, fmt.Errorf("append lookup: %w", err)
		}

		_, err = tx.Exec(
			`INSERT INTO observations (
				game_id, player_id, season_id, game_type, game_date,
				team_abbrev, opponent_abbrev, home_flag, position_code,
				shots, goals, assists, points, toi_raw, toi_minutes
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			o.GameID, o.PlayerID, o.SeasonID, o.GameType,
			o.GameDate.Format("2006-01-02"),
			o.TeamAbbrev, o.OpponentAbbrev, boolToInt(o.HomeFlag), o.PositionCode,
			o.Shots, o.Goals, o.Assists, o.Points, o.TOIRaw, o.TOIMinutes,
		)
		if err != nil {
			return inserted, fmt.Errorf("append observation %d/%d: %w", o.GameID, o.PlayerID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit append: %w", err)
	}
	return inserted, nil
}

// PlayerLog returns one player's full history in chronological order
// (game_date, then game_id).
func (s *Store) PlayerLog(playerID int64) ([]Observation, error) {
	return s.query(`WHERE player_id = ? ORDER BY game_date ASC, game_id ASC`, playerID)
}

// All returns every observation ordered by player then chronology, the
// ordering the feature engine consumes.
func (s *Store) All() ([]Observation, error) {
	return s.query(`ORDER BY player_id ASC, game_date ASC, game_id ASC`)
}

// Players lists the distinct player ids present in the store.
func (s *Store) Players() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT DISTINCT player_id FROM observations ORDER BY player_id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan player id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SeasonLog returns all observations for one season in feature-engine order.
func (s *Store) SeasonLog(seasonID string) ([]Observation, error) {
	return s.query(`WHERE season_id = ? ORDER BY player_id ASC, game_date ASC, game_id ASC`, seasonID)
}

// HasGame reports whether any observation exists for the given game.
func (s *Store) HasGame(gameID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM observations WHERE game_id = ?`, gameID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has game: %w", err)
	}
	return n > 0, nil
}

func (s *Store) query(clause string, args ...any) ([]Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT
		game_id, player_id, season_id, game_type, game_date,
		team_abbrev, opponent_abbrev, home_flag, position_code,
		shots, goals, assists, points, toi_raw, toi_minutes
	FROM observations `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		var (
			o        Observation
			dateStr  string
			homeFlag int
			position sql.NullString
			toiRaw   sql.NullString
		)
		err := rows.Scan(
			&o.GameID, &o.PlayerID, &o.SeasonID, &o.GameType, &dateStr,
			&o.TeamAbbrev, &o.OpponentAbbrev, &homeFlag, &position,
			&o.Shots, &o.Goals, &o.Assists, &o.Points, &toiRaw, &o.TOIMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.GameDate, err = time.Parse("2006-01-02", strings.TrimSpace(dateStr))
		if err != nil {
			return nil, fmt.Errorf("stored game date: %w", err)
		}
		o.HomeFlag = homeFlag != 0
		o.PositionCode = position.String
		o.TOIRaw = toiRaw.String
		out = append(out, o)
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
