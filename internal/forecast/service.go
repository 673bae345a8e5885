// Package forecast combines popularity estimation and quality rating into
// a single listing forecast, for one listing or a batch.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/meshcast/meshcast/internal/artifact"
	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/payload"
	"github.com/meshcast/meshcast/internal/popularity"
	"github.com/meshcast/meshcast/internal/quality"
)

// Service answers rating and forecasting requests. It is safe for
// concurrent use.
type Service struct {
	rater   *quality.Rater
	chain   *popularity.Chain
	metrics artifact.Metrics
}

// NewService creates a service. metrics describes the loaded models and is
// reported as-is by ModelInfo.
func NewService(rater *quality.Rater, chain *popularity.Chain, metrics artifact.Metrics) *Service {
	return &Service{rater: rater, chain: chain, metrics: metrics}
}

// Rate returns the quality report for a listing.
func (s *Service) Rate(p payload.Payload) models.QualityReport {
	return s.rater.CalculateQualityScore(p.Listing())
}

// Popularity returns the popularity estimate from the first strategy that
// succeeds.
func (s *Service) Popularity(ctx context.Context, p payload.Payload) (models.PopularityEstimate, error) {
	return s.chain.Estimate(ctx, p.Request())
}

// Forecast returns the popularity estimate together with the quality report.
func (s *Service) Forecast(ctx context.Context, p payload.Payload) (models.Forecast, error) {
	est, err := s.Popularity(ctx, p)
	if err != nil {
		return models.Forecast{}, err
	}
	report := s.Rate(p)
	return models.Forecast{PopularityEstimate: est, QualityRating: &report}, nil
}

// ModelInfo describes the trained models behind the service.
type ModelInfo struct {
	artifact.Metrics
	Strategies []string `json:"strategies"`
}

// ModelInfo reports the training metrics and the active strategy order.
func (s *Service) ModelInfo() ModelInfo {
	return ModelInfo{Metrics: s.metrics, Strategies: s.chain.Names()}
}

// Result is the outcome for one listing of a batch.
type Result struct {
	Index    int              `json:"index"`
	Forecast *models.Forecast `json:"forecast,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Batch forecasts every payload using at most workers goroutines. Results
// are returned in input order; a failing listing is reported in its Result
// and does not stop the others. Only context cancellation aborts the batch.
func (s *Service) Batch(ctx context.Context, items []payload.Payload, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			fc, err := s.Forecast(ctx, item)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				slog.Warn("Forecast failed", "index", i, "error", err)
				results[i] = Result{Index: i, Error: err.Error()}
				return nil
			}
			results[i] = Result{Index: i, Forecast: &fc}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch forecast: %w", err)
	}
	return results, nil
}
