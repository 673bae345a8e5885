package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meshcast/meshcast/internal/artifact"
	"github.com/meshcast/meshcast/internal/forecast"
	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/popularity"
	"github.com/meshcast/meshcast/internal/quality"
	"github.com/meshcast/meshcast/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastBody = `{"tag_count": 10, "category_count": 3, "description_length": 300,
	"author_followers": 200, "face_count": 20000, "vertex_count": 10000,
	"is_downloadable": true, "is_premium_author": true}`

type brokenStrategy struct{}

func (brokenStrategy) Name() string                   { return "broken" }
func (brokenStrategy) Requires() popularity.Capability { return 0 }
func (brokenStrategy) Estimate(context.Context, popularity.Request) (models.PopularityEstimate, error) {
	return models.PopularityEstimate{}, errors.New("model crashed")
}

func newService(strategies ...popularity.Strategy) *forecast.Service {
	if len(strategies) == 0 {
		strategies = []popularity.Strategy{
			popularity.NewHeuristicEstimator(popularity.ConfidenceHeuristic).Strategy(),
		}
	}
	metrics := artifact.Metrics{Trained: true, RMSE: 0.42, TrainingSamples: 1200}
	return forecast.NewService(quality.NewRater(nil), popularity.NewChain(strategies...), metrics)
}

func newMux(svc Forecaster, rs RunStore) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc, rs)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleHealth(t *testing.T) {
	rec := do(t, newMux(newService(), nil), http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, Version, resp.Version)
}

func TestHandlePredict(t *testing.T) {
	rec := do(t, newMux(newService(), nil), http.MethodPost, "/api/predict", forecastBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fc models.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.InDelta(t, 4.8, fc.PopularityScore, 1e-9)
	assert.Equal(t, models.PopularityHigh, fc.Category)
	assert.Equal(t, popularity.ConfidenceHeuristic, fc.Confidence)
	assert.Equal(t, popularity.ModelHeuristic, fc.ModelUsed)
	require.NotNil(t, fc.QualityRating)
	assert.NotEmpty(t, fc.QualityRating.Grade)
}

func TestHandleQuality(t *testing.T) {
	body := `{"description": "", "tags": [], "face_count": 0}`
	rec := do(t, newMux(newService(), nil), http.MethodPost, "/api/quality", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode(t, rec)
	assert.InDelta(t, 2.25, resp["total_score"], 1e-9)
	assert.Equal(t, "F", resp["grade"])
	assert.Len(t, resp["scores"], 5)
	assert.Len(t, resp["recommendations"], 6)
}

func TestHandlePopularity(t *testing.T) {
	rec := do(t, newMux(newService(), nil), http.MethodPost, "/api/popularity", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode(t, rec)
	assert.InDelta(t, 0.0, resp["popularity_score"], 1e-9)
	assert.Equal(t, "low", resp["category"])
	assert.NotContains(t, resp, "quality_rating")
}

func TestHandlers_MalformedInput(t *testing.T) {
	mux := newMux(newService(), nil)

	tests := []struct {
		name   string
		path   string
		body   string
		errMsg string
	}{
		{"not json", "/api/predict", `{nope`, "invalid JSON"},
		{"array", "/api/quality", `[1, 2]`, "payload must be a JSON object"},
		{"empty", "/api/popularity", ``, "empty payload"},
		{"wrong type", "/api/predict", `{"face_count": "many"}`, "/face_count"},
		{"negative", "/api/quality", `{"author_followers": -5}`, "/author_followers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode(t, rec)
			assert.Contains(t, resp["error"], "malformed input")
			assert.Contains(t, resp["error"], tt.errMsg)
		})
	}
}

func TestHandlers_PayloadTooLarge(t *testing.T) {
	big := `{"description": "` + strings.Repeat("a", MaxBodyBytes) + `"}`
	rec := do(t, newMux(newService(), nil), http.MethodPost, "/api/quality", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "payload exceeds")
}

func TestHandlers_AllStrategiesFail(t *testing.T) {
	mux := newMux(newService(brokenStrategy{}), nil)

	for _, path := range []string{"/api/predict", "/api/popularity"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, path, forecastBody)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			resp := decode(t, rec)
			assert.Contains(t, resp["error"], "no popularity strategy available")
			assert.Contains(t, resp["error"], "model crashed")
		})
	}
}

func TestHandlers_FallbackAfterFailure(t *testing.T) {
	svc := newService(brokenStrategy{}, popularity.NewHeuristicEstimator(0.6).Strategy())
	rec := do(t, newMux(svc, nil), http.MethodPost, "/api/popularity", forecastBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, popularity.ModelHeuristic, decode(t, rec)["model_used"])
}

func TestHandleModelInfo(t *testing.T) {
	rec := do(t, newMux(newService(), nil), http.MethodGet, "/api/model-info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, true, resp["trained"])
	assert.InDelta(t, 0.42, resp["rmse"], 1e-9)
	assert.Equal(t, []any{"heuristic"}, resp["strategies"])
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	rec := do(t, newMux(newService(), nil), http.MethodGet, "/api/predict", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleRuns_NoStore(t *testing.T) {
	mux := newMux(newService(), nil)

	for _, path := range []string{"/api/runs", "/api/runs/abc"} {
		rec := do(t, mux, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHandleRuns_WithStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	fc := &models.Forecast{
		PopularityEstimate: models.PopularityEstimate{PopularityScore: 2.5, Category: models.PopularityMedium, Confidence: 0.6},
		QualityRating:      &models.QualityReport{TotalScore: 80, Grade: models.GradeAMinus},
	}
	require.NoError(t, s.SaveRun(ctx, "run-7", []store.Record{
		{Listing: "chair", Forecast: fc},
		{Listing: "table", Error: "boom"},
	}))
	mux := newMux(newService(), s)

	rec := do(t, mux, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []store.RunInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Equal(t, []store.RunInfo{{RunID: "run-7", Total: 2, Failed: 1}}, runs)

	rec = do(t, mux, http.MethodGet, "/api/runs/run-7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum store.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, map[string]int{"medium": 1}, sum.Categories)

	rec = do(t, mux, http.MethodGet, "/api/runs/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "run not found", decode(t, rec)["error"])
}

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantHeader string
		wantCode   int
	}{
		{"no origins configured", nil, "http://a.example", http.MethodGet, "", http.StatusTeapot},
		{"allowed origin", []string{"http://a.example"}, "http://a.example", http.MethodPost, "http://a.example", http.StatusTeapot},
		{"other origin", []string{"http://a.example"}, "http://b.example", http.MethodGet, "", http.StatusTeapot},
		{"wildcard", []string{"*"}, "http://b.example", http.MethodGet, "http://b.example", http.StatusTeapot},
		{"preflight", []string{"http://a.example"}, "http://a.example", http.MethodOptions, "http://a.example", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/predict", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORSMiddleware(inner, tt.allowed...).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
