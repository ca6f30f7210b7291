// Package nhlapi fetches schedules, player game logs, and boxscores from
// the public NHL api-web endpoints.
package nhlapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/sog-edge/internal/telemetry"
)

const requestTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client against the api-web base URL
// (https://api-web.nhle.com/v1). The endpoints are unauthenticated; the
// limiter keeps bulk game-log ingests polite.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	telemetry.Metrics.UpstreamLatency.Record(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nhlapi: GET %s -> %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("nhlapi: decode %s: %w", path, err)
	}
	return nil
}
