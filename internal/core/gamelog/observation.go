package gamelog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Observation is one player's line from one completed game. Rows are
// immutable once the game has concluded; outcome fields are absent for
// games not yet played.
type Observation struct {
	PlayerID int64
	GameID   int64
	SeasonID string
	GameType int

	GameDate       time.Time // date only, UTC midnight
	TeamAbbrev     string
	OpponentAbbrev string
	HomeFlag       bool
	PositionCode   string

	Shots      int
	Goals      int
	Assists    int
	Points     int
	TOIRaw     string  // MM:SS as reported by the NHL API
	TOIMinutes float64 // decimal minutes parsed from TOIRaw
}

// ParseTOI converts an MM:SS time-on-ice string to decimal minutes.
func ParseTOI(raw string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("toi %q: want MM:SS", raw)
	}
	mins, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("toi %q: %w", raw, err)
	}
	secs, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("toi %q: %w", raw, err)
	}
	if mins < 0 || secs < 0 || secs > 59 {
		return 0, fmt.Errorf("toi %q: out of range", raw)
	}
	return float64(mins) + float64(secs)/60.0, nil
}

// Validate checks the fields the pipeline depends on. Rows failing
// validation are dropped at ingest, not stored.
func (o *Observation) Validate() error {
	if o.PlayerID == 0 || o.GameID == 0 {
		return fmt.Errorf("observation missing identity (player=%d game=%d)", o.PlayerID, o.GameID)
	}
	if o.GameDate.IsZero() {
		return fmt.Errorf("observation %d/%d missing game date", o.GameID, o.PlayerID)
	}
	if o.TeamAbbrev == "" || o.OpponentAbbrev == "" {
		return fmt.Errorf("observation %d/%d missing team context", o.GameID, o.PlayerID)
	}
	if o.TOIMinutes <= 0 {
		return fmt.Errorf("observation %d/%d has no ice time", o.GameID, o.PlayerID)
	}
	return nil
}

// SortChronological orders observations by game date ascending, breaking
// date ties by game id ascending. The NHL schedule has one game per team
// per day, but the ordering must stay deterministic if that ever changes.
func SortChronological(obs []Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		if !obs[i].GameDate.Equal(obs[j].GameDate) {
			return obs[i].GameDate.Before(obs[j].GameDate)
		}
		return obs[i].GameID < obs[j].GameID
	})
}

// DateOnly normalizes a timestamp to UTC midnight, the canonical form for
// game dates throughout the pipeline.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD game date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("game date %q: %w", s, err)
	}
	return t, nil
}
