package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServer serves pages of two records each, pages total, following
// ?cursor=N links.
func pagedServer(t *testing.T, pages int, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Token secret" {
			http.Error(w, `{"detail": "Invalid token"}`, http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v3/models" {
			http.NotFound(w, r)
			return
		}
		cursor := 0
		if c := r.URL.Query().Get("cursor"); c != "" {
			_, _ = fmt.Sscan(c, &cursor)
		}
		resp := map[string]any{"results": []map[string]any{
			{"uid": fmt.Sprintf("m%d", cursor*2), "likeCount": cursor},
			{"uid": fmt.Sprintf("m%d", cursor*2+1), "likeCount": cursor},
		}}
		if cursor+1 < pages {
			q := r.URL.Query()
			q.Set("cursor", fmt.Sprint(cursor+1))
			resp["next"] = srv.URL + "/v3/models?" + q.Encode()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithPause(0), WithLogger(quietLogger())}, opts...)
	c, err := NewClient(baseURL, "secret", opts...)
	require.NoError(t, err)
	return c
}

func uids(t *testing.T, records []json.RawMessage) []string {
	t.Helper()
	out := make([]string, len(records))
	for i, r := range records {
		var m struct {
			UID string `json:"uid"`
		}
		require.NoError(t, json.Unmarshal(r, &m))
		out[i] = m.UID
	}
	return out
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("https://api.example.com/v3", "")
	assert.ErrorContains(t, err, "token")

	_, err = NewClient("ftp://api.example.com", "secret")
	assert.ErrorContains(t, err, "http or https")

	c, err := NewClient("https://api.example.com/v3/", "secret")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v3/models?sort_by=-likeCount",
		c.endpoint("models", url.Values{"sort_by": {"-likeCount"}}))
	assert.Equal(t, "https://api.example.com/v3/models/abc", c.endpoint("models/abc", nil))
}

func TestFetchModels_FollowsNextLinks(t *testing.T) {
	var requests atomic.Int32
	srv := pagedServer(t, 3, &requests)
	c := newTestClient(t, srv.URL+"/v3")

	got, err := c.FetchModels(context.Background(), url.Values{"sort_by": {"-likeCount"}}, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"m0", "m1", "m2", "m3", "m4", "m5"}, uids(t, got))
	assert.EqualValues(t, 3, requests.Load())
}

func TestFetchModels_StopsAtLimit(t *testing.T) {
	var requests atomic.Int32
	srv := pagedServer(t, 10, &requests)
	c := newTestClient(t, srv.URL+"/v3")

	got, err := c.FetchModels(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m0", "m1", "m2"}, uids(t, got))
	assert.EqualValues(t, 2, requests.Load())

	requests.Store(0)
	got, err = c.FetchModels(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 1, requests.Load())
}

func TestFetchModels_InvalidLimit(t *testing.T) {
	c := newTestClient(t, "https://api.example.com/v3")
	_, err := c.FetchModels(context.Background(), nil, 0)
	assert.ErrorContains(t, err, "limit")
}

func TestFetchModels_APIError(t *testing.T) {
	var requests atomic.Int32
	srv := pagedServer(t, 1, &requests)
	c, err := NewClient(srv.URL+"/v3", "wrong", WithPause(0), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = c.FetchModels(context.Background(), nil, 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Invalid token")
}

func TestFetchModels_RejectsForeignNextLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results": [{"uid": "a"}], "next": "https://elsewhere.example.com/models?cursor=1"}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	got, err := c.FetchModels(context.Background(), nil, 10)
	assert.ErrorContains(t, err, "elsewhere.example.com")
	assert.Len(t, got, 1)
}

func TestFetchModels_EmptyPageEnds(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = fmt.Fprintf(w, `{"results": [], "next": "http://%s/models?cursor=1"}`, r.Host)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	got, err := c.FetchModels(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.EqualValues(t, 1, requests.Load())
}

// cancelAfterFirst buffers the first response and then cancels, so the
// client is interrupted while pausing before the second page.
type cancelAfterFirst struct {
	cancel context.CancelFunc
	done   atomic.Bool
}

func (c *cancelAfterFirst) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(r)
	if err != nil || c.done.Swap(true) {
		return resp, err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	c.cancel()
	return resp, nil
}

func TestFetchModels_CanceledDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var requests atomic.Int32
	srv := pagedServer(t, 5, &requests)
	c := newTestClient(t, srv.URL+"/v3",
		WithPause(time.Hour),
		WithHTTPClient(&http.Client{Transport: &cancelAfterFirst{cancel: cancel}}))

	got, err := c.FetchModels(ctx, nil, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 1, requests.Load())
}

func TestGetModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/v3/models/abc123":
			_, _ = io.WriteString(w, `{"uid": "abc123", "faceCount": 8500}`)
		case "/v3/models/broken":
			_, _ = io.WriteString(w, `<html>`)
		default:
			http.Error(w, `{"detail": "Not found."}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL+"/v3")

	m, err := c.GetModel(context.Background(), "abc123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid": "abc123", "faceCount": 8500}`, string(m))

	_, err = c.GetModel(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = c.GetModel(context.Background(), "broken")
	assert.ErrorContains(t, err, "not JSON")

	_, err = c.GetModel(context.Background(), "")
	assert.Error(t, err)
}

func TestBuildSearchParams(t *testing.T) {
	assert.Empty(t, BuildSearchParams(SearchParams{}).Encode())

	q := BuildSearchParams(SearchParams{
		Query:        "sword",
		Categories:   []string{"weapons-military", "characters-creatures"},
		Tags:         []string{"lowpoly"},
		Sort:         "likes",
		Downloadable: true,
		Animated:     true,
		Days:         30,
		PageSize:     24,
	})
	assert.Equal(t, "sword", q.Get("q"))
	assert.Equal(t, []string{"weapons-military", "characters-creatures"}, q["categories"])
	assert.Equal(t, []string{"lowpoly"}, q["tags"])
	assert.Equal(t, "-likeCount", q.Get("sort_by"))
	assert.Equal(t, "true", q.Get("downloadable"))
	assert.Equal(t, "true", q.Get("animated"))
	assert.Equal(t, "30", q.Get("date"))
	assert.Equal(t, "24", q.Get("count"))

	assert.Equal(t, "-viewCount", BuildSearchParams(SearchParams{Sort: "views"}).Get("sort_by"))
	assert.Equal(t, "-publishedAt", BuildSearchParams(SearchParams{Sort: "recent"}).Get("sort_by"))
	assert.Equal(t, "-downloadCount", BuildSearchParams(SearchParams{Sort: "-downloadCount"}).Get("sort_by"))
}
