// Package quality rates how well a marketplace listing is prepared.
//
// A Rater combines five independent sub-scores (description, tags, polygons,
// account and technical features) into a weighted 0 to 100 total, maps the
// total to a letter grade and lists what to improve.
package quality

import (
	"math"

	"github.com/meshcast/meshcast/internal/catalog"
	"github.com/meshcast/meshcast/internal/models"
)

// Weights defines the contribution of each dimension to the total score.
type Weights struct {
	Description float64 `json:"description"`
	Tags        float64 `json:"tags"`
	Polygons    float64 `json:"polygons"`
	Account     float64 `json:"account"`
	Technical   float64 `json:"technical"`
}

// DefaultWeights returns the fixed weighting, which sums to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Description: 0.25,
		Tags:        0.25,
		Polygons:    0.20,
		Account:     0.15,
		Technical:   0.15,
	}
}

// Rater computes quality reports. A Rater is safe for concurrent use.
type Rater struct {
	tables  *catalog.Tables
	weights Weights
}

// NewRater creates a rater over the given tables. A nil tables value uses
// the built-in catalog.
func NewRater(tables *catalog.Tables) *Rater {
	if tables == nil {
		tables = catalog.Default()
	}
	return &Rater{tables: tables, weights: DefaultWeights()}
}

// CalculateQualityScore rates a listing. It never fails: absent fields fall
// back to their defaults.
func (r *Rater) CalculateQualityScore(in models.ListingFeatures) models.QualityReport {
	in = in.Normalize()

	scores := map[string]float64{
		models.DimensionDescription: DescriptionScore(in.Description),
		models.DimensionTags:        r.TagsScore(in.Tags, in.Category),
		models.DimensionPolygons:    PolygonScore(in.FaceCount, r.tables.PolygonRange(in.Category)),
		models.DimensionAccount:     AccountScore(in.AccountType, in.AuthorFollowers),
		models.DimensionTechnical:   TechnicalScore(in),
	}

	total := round2(r.weightedTotal(scores))

	return models.QualityReport{
		TotalScore:      total,
		Grade:           GradeFor(total),
		Scores:          scores,
		Recommendations: r.recommendations(scores, in),
	}
}

func (r *Rater) weightedTotal(scores map[string]float64) float64 {
	return scores[models.DimensionDescription]*r.weights.Description +
		scores[models.DimensionTags]*r.weights.Tags +
		scores[models.DimensionPolygons]*r.weights.Polygons +
		scores[models.DimensionAccount]*r.weights.Account +
		scores[models.DimensionTechnical]*r.weights.Technical
}

// gradeBands are inclusive lower bounds, highest first.
var gradeBands = []struct {
	min   float64
	grade models.Grade
}{
	{90, models.GradeAPlus},
	{85, models.GradeA},
	{80, models.GradeAMinus},
	{75, models.GradeBPlus},
	{70, models.GradeB},
	{65, models.GradeBMinus},
	{60, models.GradeCPlus},
	{55, models.GradeC},
	{50, models.GradeCMinus},
	{40, models.GradeD},
}

// GradeFor maps a total score to its letter grade.
func GradeFor(total float64) models.Grade {
	for _, b := range gradeBands {
		if total >= b.min {
			return b.grade
		}
	}
	return models.GradeF
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(v, 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
