package oddsapi

import (
	"context"
	"net/url"
	"time"

	"github.com/charleschow/sog-edge/internal/telemetry"
)

// Event is one NHL game as the odds feed identifies it: a feed-local id
// plus full team names that must be resolved to tri-codes downstream.
type Event struct {
	ID           string    `json:"id"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// PropLine is one player's shots-on-goal market, pivoted so both sides
// of the line sit on one row. Either side's odds may be nil when the
// book posts only one side.
type PropLine struct {
	PlayerName string
	Line       float64
	OverOdds   *int
	UnderOdds  *int
}

// Events lists upcoming NHL events.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	err := c.getJSON(ctx, "/sports/"+sportKey+"/events", url.Values{}, &events)
	if err != nil {
		return nil, err
	}
	telemetry.Metrics.OddsEventsFetched.Add(int64(len(events)))
	return events, nil
}

type eventOddsResponse struct {
	Bookmakers []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name        string  `json:"name"`        // "Over" | "Under"
				Description string  `json:"description"` // player name
				Price       float64 `json:"price"`       // American odds
				Point       float64 `json:"point"`       // the line
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// EventProps fetches the shots-on-goal market for one event from the
// configured bookmaker and pivots the Over/Under outcome pairs into one
// line per player. A player quoted at two different lines keeps the
// first; the feed does not do alternate lines on this market.
func (c *Client) EventProps(ctx context.Context, eventID string) ([]PropLine, error) {
	params := url.Values{
		"regions":    {"us"},
		"markets":    {marketKey},
		"oddsFormat": {"american"},
		"bookmakers": {c.bookmaker},
	}

	var resp eventOddsResponse
	if err := c.getJSON(ctx, "/sports/"+sportKey+"/events/"+eventID+"/odds", params, &resp); err != nil {
		return nil, err
	}

	byPlayer := make(map[string]*PropLine)
	var order []string
	for _, bk := range resp.Bookmakers {
		if bk.Key != c.bookmaker {
			continue
		}
		for _, m := range bk.Markets {
			if m.Key != marketKey {
				continue
			}
			for _, o := range m.Outcomes {
				line, ok := byPlayer[o.Description]
				if !ok {
					line = &PropLine{PlayerName: o.Description, Line: o.Point}
					byPlayer[o.Description] = line
					order = append(order, o.Description)
				}
				odds := int(o.Price)
				if odds == 0 {
					continue
				}
				switch o.Name {
				case "Over":
					line.OverOdds = &odds
				case "Under":
					line.UnderOdds = &odds
				}
			}
		}
	}

	out := make([]PropLine, 0, len(order))
	for _, name := range order {
		out = append(out, *byPlayer[name])
	}
	return out, nil
}
