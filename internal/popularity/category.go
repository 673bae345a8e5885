package popularity

import "github.com/meshcast/meshcast/internal/models"

// Category thresholds shared by every estimation path.
const (
	mediumThreshold = 2.0
	highThreshold   = 4.0
)

// Fixed confidence values. They are reported flags, not calibrated
// probabilities.
const (
	ConfidenceHeuristic = 0.6
	ConfidenceLow       = 0.7
	ConfidenceMedium    = 0.8
	ConfidenceHigh      = 0.85
)

// Categorize buckets a popularity score: below 2 is low, below 4 is medium,
// anything else is high.
func Categorize(score float64) models.PopularityCategory {
	switch {
	case score < mediumThreshold:
		return models.PopularityLow
	case score < highThreshold:
		return models.PopularityMedium
	default:
		return models.PopularityHigh
	}
}

// Confidences holds the confidence reported by each path.
type Confidences struct {
	Heuristic float64 `yaml:"heuristic,omitempty" json:"heuristic"`
	Low       float64 `yaml:"low,omitempty" json:"low"`
	Medium    float64 `yaml:"medium,omitempty" json:"medium"`
	High      float64 `yaml:"high,omitempty" json:"high"`
}

// DefaultConfidences returns the built-in confidence constants.
func DefaultConfidences() Confidences {
	return Confidences{
		Heuristic: ConfidenceHeuristic,
		Low:       ConfidenceLow,
		Medium:    ConfidenceMedium,
		High:      ConfidenceHigh,
	}
}

// ForCategory returns the model-path confidence for a category.
func (c Confidences) ForCategory(cat models.PopularityCategory) float64 {
	switch cat {
	case models.PopularityHigh:
		return c.High
	case models.PopularityMedium:
		return c.Medium
	default:
		return c.Low
	}
}
