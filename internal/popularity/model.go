package popularity

import (
	"context"
	"fmt"
	"math"

	"github.com/meshcast/meshcast/internal/models"
)

//go:generate go tool mockgen -source=model.go -destination=model_mock_test.go -package=popularity

// Regressor is a trained model seen as an opaque features-to-score function.
type Regressor interface {
	Predict(ctx context.Context, req Request) (float64, error)
}

// Request is the input to a popularity strategy.
type Request struct {
	Features models.PredictionFeatures
	// Text is the normalized listing text, see ListingText.
	Text string
}

// Capabilities reports which optional inputs the request carries.
func (r Request) Capabilities() Capability {
	var c Capability
	if r.Text != "" {
		c |= CapText
	}
	return c
}

// ModelStrategy wraps a Regressor. Its output stays on the model's native
// scale and is bucketed with Categorize.
type ModelStrategy struct {
	name        string
	model       Regressor
	requires    Capability
	confidences Confidences
}

// NewModelStrategy returns a strategy named name backed by model.
func NewModelStrategy(name string, model Regressor, requires Capability, conf Confidences) *ModelStrategy {
	return &ModelStrategy{name: name, model: model, requires: requires, confidences: conf}
}

func (m *ModelStrategy) Name() string { return m.name }

func (m *ModelStrategy) Requires() Capability { return m.requires }

func (m *ModelStrategy) Estimate(ctx context.Context, req Request) (models.PopularityEstimate, error) {
	score, err := m.model.Predict(ctx, req)
	if err != nil {
		return models.PopularityEstimate{}, &StrategyError{Strategy: m.name, Err: err}
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return models.PopularityEstimate{}, &StrategyError{
			Strategy: m.name,
			Err:      fmt.Errorf("model produced non-finite score %v", score),
		}
	}

	cat := Categorize(score)
	return models.PopularityEstimate{
		PopularityScore: score,
		Category:        cat,
		Confidence:      m.confidences.ForCategory(cat),
		ModelUsed:       m.name,
	}, nil
}
