package models

// Quality dimensions, in the order recommendations are evaluated.
const (
	DimensionDescription = "description"
	DimensionTags        = "tags"
	DimensionPolygons    = "polygons"
	DimensionAccount     = "account"
	DimensionTechnical   = "technical"
)

// Dimensions lists every quality dimension in evaluation order.
var Dimensions = []string{
	DimensionDescription,
	DimensionTags,
	DimensionPolygons,
	DimensionAccount,
	DimensionTechnical,
}

// Grade is an ordinal letter derived from a total quality score.
type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
)

// QualityReport is the result of rating a listing.
type QualityReport struct {
	TotalScore      float64            `json:"total_score"`
	Grade           Grade              `json:"grade"`
	Scores          map[string]float64 `json:"scores"`
	Recommendations []string           `json:"recommendations"`
}

// Forecast combines a popularity estimate with the listing's quality report.
type Forecast struct {
	PopularityEstimate
	QualityRating *QualityReport `json:"quality_rating"`
}
