package webapi

import (
	"context"

	"github.com/meshcast/meshcast/internal/forecast"
	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/payload"
)

// Forecaster answers the scoring endpoints. *forecast.Service implements it.
type Forecaster interface {
	Rate(p payload.Payload) models.QualityReport
	Popularity(ctx context.Context, p payload.Payload) (models.PopularityEstimate, error)
	Forecast(ctx context.Context, p payload.Payload) (models.Forecast, error)
	ModelInfo() forecast.ModelInfo
}

var _ Forecaster = (*forecast.Service)(nil)

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
