// Package popularity estimates how much audience engagement a listing is
// likely to attract.
//
// Estimates come from an ordered Chain of strategies: trained regressors
// when their artifacts are available, and a heuristic over structural
// and account features that always succeeds.
package popularity

import (
	"context"
	"math"

	"github.com/meshcast/meshcast/internal/models"
)

// Strategy names reported in PopularityEstimate.ModelUsed.
const (
	ModelHeuristic = "heuristic"
	ModelStandard  = "standard"
	ModelAdvanced  = "advanced"
)

const (
	maxHeuristicScore = 10

	optimalFacesMin    = 5000
	optimalFacesMax    = 50000
	faceFalloffRange   = 100000
	optimalVerticesMin = 2500
	optimalVerticesMax = 25000
)

// HeuristicEstimator scores a listing additively from its structural and
// account features. It holds no state beyond its confidence value.
type HeuristicEstimator struct {
	confidence float64
}

// NewHeuristicEstimator returns an estimator reporting the given fixed
// confidence.
func NewHeuristicEstimator(confidence float64) *HeuristicEstimator {
	return &HeuristicEstimator{confidence: confidence}
}

// Estimate returns a popularity score in [0,10] for f.
func (h *HeuristicEstimator) Estimate(f models.PredictionFeatures) models.PopularityEstimate {
	score := float64(f.TagCount)*0.15 +
		float64(f.CategoryCount)*0.2 +
		float64(f.DescriptionLength)*0.001 +
		float64(f.AuthorFollowers)*0.0005 +
		polygonBonus(f.FaceCount) +
		vertexBonus(f.VertexCount) +
		float64(f.AnimationCount)*0.2

	if f.IsDownloadable {
		score += 0.5
	}
	if f.IsPremiumAuthor {
		score += 0.3
	}

	score = math.Max(0, math.Min(score, maxHeuristicScore))

	return models.PopularityEstimate{
		PopularityScore: score,
		Category:        Categorize(score),
		Confidence:      h.confidence,
		ModelUsed:       ModelHeuristic,
	}
}

func polygonBonus(faces int) float64 {
	switch {
	case faces >= optimalFacesMin && faces <= optimalFacesMax:
		return 1.0
	case faces > 0 && faces < optimalFacesMin:
		return 0.5 * float64(faces) / optimalFacesMin
	case faces > optimalFacesMax:
		return 0.5 * math.Max(0, 1-float64(faces-optimalFacesMax)/faceFalloffRange)
	default:
		return 0
	}
}

func vertexBonus(vertices int) float64 {
	switch {
	case vertices >= optimalVerticesMin && vertices <= optimalVerticesMax:
		return 0.5
	case vertices > 0:
		return 0.2
	default:
		return 0
	}
}

// Strategy adapts the estimator to the Chain. It never fails and needs no
// capabilities.
func (h *HeuristicEstimator) Strategy() Strategy {
	return heuristicStrategy{h}
}

type heuristicStrategy struct {
	est *HeuristicEstimator
}

func (heuristicStrategy) Name() string { return ModelHeuristic }

func (heuristicStrategy) Requires() Capability { return 0 }

func (s heuristicStrategy) Estimate(_ context.Context, req Request) (models.PopularityEstimate, error) {
	return s.est.Estimate(req.Features), nil
}
