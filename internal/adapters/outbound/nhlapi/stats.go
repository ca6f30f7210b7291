package nhlapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/sog-edge/internal/telemetry"
)

// Skater is one row of the league skater directory.
type Skater struct {
	PlayerID int64  `json:"playerId"`
	FullName string `json:"skaterFullName"`
	Team     string `json:"teamAbbrevs"`
}

// StatsClient hits the NHL stats REST host (api.nhle.com/stats/rest),
// which is separate from the api-web host and has its own shape.
type StatsClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewStatsClient(baseURL string) *StatsClient {
	return &StatsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 2),
	}
}

type skaterSummaryResponse struct {
	Data  []Skater `json:"data"`
	Total int      `json:"total"`
}

// Skaters lists every skater with at least one game in the season. The
// endpoint pages at 100 rows by default; limit=-1 returns everything in
// one response.
func (c *StatsClient) Skaters(ctx context.Context, seasonID string, gameType int) ([]Skater, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"limit":      {"-1"},
		"cayenneExp": {fmt.Sprintf("seasonId=%s and gameTypeId=%d", seasonID, gameType)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/skater/summary?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	telemetry.Metrics.UpstreamLatency.Record(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nhlapi stats: skater summary -> %d", resp.StatusCode)
	}

	var sr skaterSummaryResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("nhlapi stats: decode skater summary: %w", err)
	}
	return sr.Data, nil
}
