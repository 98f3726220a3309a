// Package mcxmargin provides a Go client for the margin-server API.
package mcxmargin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mcxmargin/internal/domain"
	"mcxmargin/internal/httpapi"
	"mcxmargin/internal/store"
)

// Client talks to a running margin-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Margins retrieves records matching the filter.
func (c *Client) Margins(ctx context.Context, f store.Filter) ([]domain.MarginRecord, error) {
	q := url.Values{}
	if f.Symbol != "" {
		q.Set("symbol", f.Symbol)
	}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.Limit != 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var resp httpapi.MarginsResponse
	if err := c.get(ctx, "/api/margins", q, &resp); err != nil {
		return nil, err
	}
	return resp.Margins, nil
}

// Summary retrieves the per-symbol aggregates.
func (c *Client) Summary(ctx context.Context) ([]store.SymbolSummary, error) {
	var resp httpapi.SummaryResponse
	if err := c.get(ctx, "/api/summary", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Symbols, nil
}

// Dates retrieves the stored trading dates, newest first.
func (c *Client) Dates(ctx context.Context) ([]string, error) {
	var resp httpapi.DatesResponse
	if err := c.get(ctx, "/api/dates", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Dates, nil
}

// Health reports whether the server's store is reachable and how many
// records it holds.
func (c *Client) Health(ctx context.Context) (*httpapi.HealthResponse, error) {
	var resp httpapi.HealthResponse
	if err := c.get(ctx, "/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
