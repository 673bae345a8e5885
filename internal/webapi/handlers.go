// Package webapi implements the JSON HTTP API over the forecast service.
package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/meshcast/meshcast/internal/payload"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// MaxBodyBytes bounds request payloads.
const MaxBodyBytes = 1 << 20

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	svc   Forecaster
	store RunStore
}

// NewHandlers creates a new Handlers. store may be nil, in which case the
// run endpoints report 404.
func NewHandlers(svc Forecaster, store RunStore) *Handlers {
	return &Handlers{svc: svc, store: store}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleQuality rates the listing in the request body.
func (h *Handlers) HandleQuality(w http.ResponseWriter, r *http.Request) {
	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Rate(p))
}

// HandlePopularity estimates the popularity of the listing in the request
// body.
func (h *Handlers) HandlePopularity(w http.ResponseWriter, r *http.Request) {
	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	est, err := h.svc.Popularity(r.Context(), p)
	if err != nil {
		slog.Error("Popularity estimate failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// HandlePredict returns the combined popularity and quality forecast.
func (h *Handlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	fc, err := h.svc.Forecast(r.Context(), p)
	if err != nil {
		slog.Error("Forecast failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// HandleModelInfo reports the training metrics and strategy order.
func (h *Handlers) HandleModelInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ModelInfo())
}

// HandleRuns lists the stored batch runs.
func (h *Handlers) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "no result store configured")
		return
	}
	runs, err := h.store.Runs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// HandleRunDetail returns the summary of one stored run.
func (h *Handlers) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "no result store configured")
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return
	}

	sum, err := h.store.Summary(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sum.Total == 0 {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Forecaster, store RunStore) {
	h := NewHandlers(svc, store)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/model-info", h.HandleModelInfo)
	mux.HandleFunc("POST /api/predict", h.HandlePredict)
	mux.HandleFunc("POST /api/quality", h.HandleQuality)
	mux.HandleFunc("POST /api/popularity", h.HandlePopularity)
	mux.HandleFunc("GET /api/runs", h.HandleRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.HandleRunDetail)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// readPayload decodes the request body, writing the error response itself
// when it cannot.
func readPayload(w http.ResponseWriter, r *http.Request) (payload.Payload, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("payload exceeds %d bytes", tooBig.Limit))
			return payload.Payload{}, false
		}
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return payload.Payload{}, false
	}

	p, err := payload.Parse(data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, payload.ErrMalformedInput) {
			status = http.StatusBadRequest
		}
		slog.Debug("Rejected payload", "path", r.URL.Path, "error", err)
		writeError(w, status, err.Error())
		return payload.Payload{}, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}
