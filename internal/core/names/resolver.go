package names

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charleschow/sog-edge/internal/telemetry"
)

// Resolver maps normalized player names to NHL player ids.
type Resolver struct {
	byName map[string]int64
}

func NewResolver() *Resolver {
	return &Resolver{byName: make(map[string]int64)}
}

// LoadPlayerMap reads a two-column CSV (player_name, player_id), with or
// without a header row. Rows that fail to parse are logged and skipped,
// never fatal: one bad row should not take out the whole slate.
func LoadPlayerMap(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open player map: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	res := NewResolver()
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read player map: %w", err)
		}
		line++
		if len(rec) < 2 {
			continue
		}
		id, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			if line > 1 { // header row parses as an error too, stay quiet about it
				telemetry.Warnf("names: skipping player map line %d: %v", line, err)
			}
			continue
		}
		res.Add(rec[0], id)
	}
	return res, nil
}

// PlayerEntry is one row of the persisted player map.
type PlayerEntry struct {
	Name     string
	PlayerID int64
}

// SavePlayerMap writes the player map CSV the resolver loads. The raw
// name is stored, not the normal form, so the file stays greppable.
func SavePlayerMap(path string, entries []PlayerEntry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create player map dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create player map: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"player_name", "player_id"}); err != nil {
		return fmt.Errorf("write player map header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Name, strconv.FormatInt(e.PlayerID, 10)}); err != nil {
			return fmt.Errorf("write player map row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Add registers a player under the normalized form of the given name.
func (r *Resolver) Add(name string, id int64) {
	r.byName[Normalize(name)] = id
}

// Resolve looks a free-text name up by its normal form.
func (r *Resolver) Resolve(name string) (int64, bool) {
	id, ok := r.byName[Normalize(name)]
	return id, ok
}

func (r *Resolver) Len() int { return len(r.byName) }

// teamAbbrevs maps odds-feed team names to NHL tri-codes.
var teamAbbrevs = map[string]string{
	"anaheim ducks":         "ANA",
	"boston bruins":         "BOS",
	"buffalo sabres":        "BUF",
	"calgary flames":        "CGY",
	"carolina hurricanes":   "CAR",
	"chicago blackhawks":    "CHI",
	"colorado avalanche":    "COL",
	"columbus blue jackets": "CBJ",
	"dallas stars":          "DAL",
	"detroit red wings":     "DET",
	"edmonton oilers":       "EDM",
	"florida panthers":      "FLA",
	"los angeles kings":     "LAK",
	"minnesota wild":        "MIN",
	"montreal canadiens":    "MTL",
	"nashville predators":   "NSH",
	"new jersey devils":     "NJD",
	"new york islanders":    "NYI",
	"new york rangers":      "NYR",
	"ottawa senators":       "OTT",
	"philadelphia flyers":   "PHI",
	"pittsburgh penguins":   "PIT",
	"san jose sharks":       "SJS",
	"seattle kraken":        "SEA",
	"st louis blues":        "STL",
	"tampa bay lightning":   "TBL",
	"toronto maple leafs":   "TOR",
	"utah mammoth":          "UTA",
	"vancouver canucks":     "VAN",
	"vegas golden knights":  "VGK",
	"washington capitals":   "WSH",
	"winnipeg jets":         "WPG",
}

// TeamAbbrev resolves a full team name ("Toronto Maple Leafs") to its
// tri-code. Already-abbreviated input passes through unchanged.
func TeamAbbrev(name string) (string, bool) {
	if len(name) == 3 {
		return strings.ToUpper(name), true
	}
	abbrev, ok := teamAbbrevs[Normalize(name)]
	return abbrev, ok
}
