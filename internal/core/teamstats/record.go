package teamstats

import (
	"sort"
	"time"

	"github.com/charleschow/sog-edge/internal/core/gamelog"
)

// TeamGame is one team's side of one game: shots and goals for and
// against, keyed by (team, game_date).
type TeamGame struct {
	GameID       int64
	GameDate     time.Time
	TeamAbbrev   string
	Home         bool
	ShotsFor     int
	ShotsAgainst int
	GoalsFor     int
	GoalsAgainst int
}

// BuildFromObservations aggregates player game logs into per-team game
// records. Each game yields two rows, one per side; a side's shots-against
// is the opposing side's skater shot total.
func BuildFromObservations(obs []gamelog.Observation) []TeamGame {
	type side struct {
		date  time.Time
		team  string
		opp   string
		home  bool
		shots int
		goals int
	}

	sides := make(map[int64]map[string]*side)
	for _, o := range obs {
		byTeam, ok := sides[o.GameID]
		if !ok {
			byTeam = make(map[string]*side, 2)
			sides[o.GameID] = byTeam
		}
		s, ok := byTeam[o.TeamAbbrev]
		if !ok {
			s = &side{date: o.GameDate, team: o.TeamAbbrev, opp: o.OpponentAbbrev, home: o.HomeFlag}
			byTeam[o.TeamAbbrev] = s
		}
		s.shots += o.Shots
		s.goals += o.Goals
	}

	var out []TeamGame
	for gameID, byTeam := range sides {
		for _, s := range byTeam {
			tg := TeamGame{
				GameID:     gameID,
				GameDate:   s.date,
				TeamAbbrev: s.team,
				Home:       s.home,
				ShotsFor:   s.shots,
				GoalsFor:   s.goals,
			}
			if opp, ok := byTeam[s.opp]; ok {
				tg.ShotsAgainst = opp.shots
				tg.GoalsAgainst = opp.goals
			}
			out = append(out, tg)
		}
	}

	SortChronological(out)
	return out
}

// SortChronological orders team games by team, then date, then game id —
// the scan order the defensive series requires.
func SortChronological(games []TeamGame) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].TeamAbbrev != games[j].TeamAbbrev {
			return games[i].TeamAbbrev < games[j].TeamAbbrev
		}
		if !games[i].GameDate.Equal(games[j].GameDate) {
			return games[i].GameDate.Before(games[j].GameDate)
		}
		return games[i].GameID < games[j].GameID
	})
}
