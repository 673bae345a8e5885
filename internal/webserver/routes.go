package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/meshcast/meshcast/internal/webapi"
)

// registerRoutes sets up the API routes on the given mux.
func registerRoutes(mux *http.ServeMux, svc webapi.Forecaster, runs webapi.RunStore) {
	webapi.RegisterRoutes(mux, svc, runs)
	mux.HandleFunc("/", handleNotFound)
}

// handleNotFound returns a JSON 404 for paths outside the API.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(webapi.ErrorResponse{Error: "no route for " + r.URL.Path}) //nolint:errcheck
}
