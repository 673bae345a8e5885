// Package marketplace fetches raw model records from the marketplace REST
// API. Records are kept as raw JSON so exports round-trip every field the
// API returns.
package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 30 * time.Second

// maxErrorBody is how much of a failed response is kept in APIError.
const maxErrorBody = 512

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace API returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the marketplace API with token authentication.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	pause  time.Duration
	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithPause sets the delay between page requests.
func WithPause(d time.Duration) Option {
	return func(c *Client) { c.pause = d }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client for baseURL (for example
// https://api.sketchfab.com/v3).
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("marketplace: API token is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("marketplace: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("marketplace: base URL %q must be http or https", baseURL)
	}
	c := &Client{
		base:   u,
		token:  token,
		http:   &http.Client{Timeout: DefaultTimeout},
		pause:  time.Second,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// page is one response of the paginated model listing.
type page struct {
	Results []json.RawMessage `json:"results"`
	Next    string            `json:"next"`
}

// FetchModels follows the listing's next links until limit records are
// collected or the listing ends, pausing between pages.
func (c *Client) FetchModels(ctx context.Context, params url.Values, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("marketplace: limit must be positive, got %d", limit)
	}

	var all []json.RawMessage
	next := c.endpoint("models", params)
	for next != "" && len(all) < limit {
		if len(all) > 0 {
			if err := c.wait(ctx); err != nil {
				return all, err
			}
		}

		c.logger.Info("Fetching models", "url", next)
		body, err := c.get(ctx, next)
		if err != nil {
			return all, fmt.Errorf("fetching models: %w", err)
		}
		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return all, fmt.Errorf("decoding model page: %w", err)
		}
		all = append(all, p.Results...)
		c.logger.Info("Fetched models", "page", len(p.Results), "total", len(all))

		if len(p.Results) == 0 {
			break
		}
		if next, err = c.sameHost(p.Next); err != nil {
			return all, err
		}
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetModel returns one model record by uid.
func (c *Client) GetModel(ctx context.Context, uid string) (json.RawMessage, error) {
	if uid == "" {
		return nil, errors.New("marketplace: empty model uid")
	}
	body, err := c.get(ctx, c.endpoint("models/"+url.PathEscape(uid), nil))
	if err != nil {
		return nil, fmt.Errorf("fetching model %s: %w", uid, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetching model %s: response is not JSON", uid)
	}
	return json.RawMessage(body), nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	u.RawQuery = params.Encode()
	return u.String()
}

// sameHost keeps the token from being sent to a host other than the
// configured one.
func (c *Client) sameHost(next string) (string, error) {
	if next == "" {
		return "", nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("marketplace: parsing next link: %w", err)
	}
	if u.Host != c.base.Host {
		return "", fmt.Errorf("marketplace: next link points to %q, want %q", u.Host, c.base.Host)
	}
	return next, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.pause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
