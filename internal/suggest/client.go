// Package suggest looks up tag suggestions for the text being typed.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/tag"
)

// Source returns the items whose name matches query.
type Source interface {
	Lookup(ctx context.Context, query string) ([]tag.Item, error)
}

// maxResponseBytes caps how much of a lookup response is read.
const maxResponseBytes = 4 << 20

// Client is an HTTP client for the autocomplete API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
// A zero timeout means no timeout beyond the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the request URL for query.
func (c *Client) URL(query string) string {
	v := url.Values{}
	v.Set("name", strings.TrimSpace(query))
	return c.baseURL + "/autocomplete?" + v.Encode()
}

// Lookup fetches suggestions for query. Cancelling ctx aborts the request.
// A 404 means no matches and yields an empty list.
func (c *Client) Lookup(ctx context.Context, query string) ([]tag.Item, error) {
	log := logger.FromContext(ctx).WithName("suggest")
	endpoint := c.URL(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	log.V(1).Info("lookup response", "url", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start).String())

	if resp.StatusCode == http.StatusNotFound {
		return []tag.Item{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("lookup %q: unexpected status %s", query, resp.Status)
	}

	var items []tag.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if items == nil {
		items = []tag.Item{}
	}

	return items, nil
}
