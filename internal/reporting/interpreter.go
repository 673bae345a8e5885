// Package reporting renders quality reports and forecasts as JSON, plain
// text, Markdown or HTML.
package reporting

import (
	"fmt"

	"github.com/meshcast/meshcast/internal/models"
)

// InterpretGrade returns a plain-language label for a quality grade.
func InterpretGrade(g models.Grade) string {
	switch g {
	case models.GradeAPlus, models.GradeA, models.GradeAMinus:
		return "Excellent listing"
	case models.GradeBPlus, models.GradeB, models.GradeBMinus:
		return "Good listing"
	case models.GradeCPlus, models.GradeC, models.GradeCMinus:
		return "Needs work"
	case models.GradeD:
		return "Poor listing"
	default:
		return "Not ready for publishing"
	}
}

// InterpretPopularity explains a popularity category.
func InterpretPopularity(c models.PopularityCategory) string {
	switch c {
	case models.PopularityHigh:
		return "Likely to attract strong engagement"
	case models.PopularityMedium:
		return "Moderate engagement expected"
	default:
		return "Low engagement expected"
	}
}

// InterpretEstimate summarises an estimate in one line, naming the strategy
// that produced it.
func InterpretEstimate(e models.PopularityEstimate) string {
	source := e.ModelUsed
	if source == "" {
		source = "unknown"
	}
	return fmt.Sprintf("%s (score %.2f, %s model, confidence %.0f%%)",
		InterpretPopularity(e.Category), e.PopularityScore, source, e.Confidence*100)
}
