// Package oddsapi pulls NHL events and player shots-on-goal prop markets
// from The Odds API v4.
package oddsapi

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

const (
	sportKey       = "icehockey_nhl"
	marketKey      = "player_shots_on_goal"
	requestTimeout = 30 * time.Second
)

type Client struct {
	baseURL    string
	apiKey     string
	bookmaker  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client for one bookmaker's prop feed. The free tier
// meters requests per month, so the limiter is conservative.
func NewClient(baseURL, apiKey, bookmaker string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		bookmaker:  bookmaker,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 2),
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.OddsFetchErrors.Inc()
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	telemetry.Metrics.UpstreamLatency.Record(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		telemetry.Metrics.OddsFetchErrors.Inc()
		return fmt.Errorf("oddsapi: GET %s -> %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("oddsapi: decode %s: %w", path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
