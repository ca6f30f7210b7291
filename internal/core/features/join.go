package features

import (
	"github.com/charleschow/sog-edge/internal/core/gamelog"
	"github.com/charleschow/sog-edge/internal/core/teamstats"
)

// FeatureColumns is the canonical model input ordering. Identifiers,
// dates, team strings, and all same-game outcome fields (shots, goals,
// assists, points, realized ice time) are deliberately absent: those are
// either labels or only knowable after the game is played.
var FeatureColumns = []string{
	"shots_last1",
	"shots_last5_sum",
	"shots_last5_avg",
	"toi_last5_sum",
	"shots_per60_last5",
	"shots_last10_sum",
	"shots_last10_avg",
	"toi_last10_sum",
	"shots_per60_last10",
	"shots_season_to_date",
	"toi_season_to_date",
	"shots_per60_season_to_date",
	"games_played_so_far",
	"home_flag",
	"days_since_last_game",
	"opponent_shots_allowed_avg",
	"opponent_shots_allowed_last5",
	"opponent_shots_allowed_last10",
	"matchup_shots_avg",
}

// Row is one fully joined training/scoring observation: the base game log
// row, its trailing aggregates, and the opponent's defensive profile as of
// the game date.
type Row struct {
	Obs    gamelog.Observation
	Feat   Trailing
	OppDef teamstats.DefenseProfile
}

// Vector flattens the row in FeatureColumns order. By this point the
// first-game sentinel has been resolved to zeros (trailing aggregates) and
// the league-average fill (opponent profile); no NaN ever reaches the model.
func (r Row) Vector() []float64 {
	home := 0.0
	if r.Obs.HomeFlag {
		home = 1.0
	}
	return []float64{
		r.Feat.ShotsLast1,
		r.Feat.ShotsLast5Sum,
		r.Feat.ShotsLast5Avg,
		r.Feat.TOILast5Sum,
		r.Feat.ShotsPer60Last5,
		r.Feat.ShotsLast10Sum,
		r.Feat.ShotsLast10Avg,
		r.Feat.TOILast10Sum,
		r.Feat.ShotsPer60Last10,
		r.Feat.ShotsSeasonToDate,
		r.Feat.TOISeasonToDate,
		r.Feat.ShotsPer60SeasonToDate,
		float64(r.Feat.GamesPlayedSoFar),
		home,
		r.Feat.DaysSinceLastGame,
		r.OppDef.SeasonAvg,
		r.OppDef.Last5Avg,
		r.OppDef.Last10Avg,
		r.Feat.MatchupShotsAvg,
	}
}

// Target is the training label: realized shots on goal.
func (r Row) Target() float64 { return float64(r.Obs.Shots) }

// BuildDataset joins every observation against the opponent-strength
// series. The join is a left join on (opponent_abbrev, game_date): the
// base row is never dropped, and a lookup miss fills with the league
// average. The series itself only contains profiles computed from games
// strictly before each date, so no forward lookahead on opponent form is
// possible here.
func BuildDataset(obs []gamelog.Observation, series *teamstats.Series) []Row {
	byPlayer := make(map[int64][]gamelog.Observation)
	var order []int64
	for _, o := range obs {
		if _, ok := byPlayer[o.PlayerID]; !ok {
			order = append(order, o.PlayerID)
		}
		byPlayer[o.PlayerID] = append(byPlayer[o.PlayerID], o)
	}

	rows := make([]Row, 0, len(obs))
	for _, pid := range order {
		log := byPlayer[pid]
		gamelog.SortChronological(log)
		trailing := BuildPlayerTrailing(log)
		for i, o := range log {
			opp, _ := series.Lookup(o.OpponentAbbrev, o.GameDate)
			rows = append(rows, Row{Obs: o, Feat: trailing[i], OppDef: opp})
		}
	}
	return rows
}

// TrainableOnly filters out first-game rows, whose trailing aggregates are
// sentinels rather than measurements. Mirrors the original pipeline's
// NaN-row drop before fitting.
func TrainableOnly(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Feat.Valid {
			out = append(out, r)
		}
	}
	return out
}
