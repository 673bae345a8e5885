package models

// PredictionFeatures is the structural/account feature record used by the
// popularity estimators.
type PredictionFeatures struct {
	TagCount          int  `json:"tag_count" mapstructure:"tag_count"`
	CategoryCount     int  `json:"category_count" mapstructure:"category_count"`
	DescriptionLength int  `json:"description_length" mapstructure:"description_length"`
	AuthorFollowers   int  `json:"author_followers" mapstructure:"author_followers"`
	FaceCount         int  `json:"face_count" mapstructure:"face_count"`
	VertexCount       int  `json:"vertex_count" mapstructure:"vertex_count"`
	AnimationCount    int  `json:"animation_count" mapstructure:"animation_count"`
	IsDownloadable    bool `json:"is_downloadable" mapstructure:"is_downloadable"`
	IsPremiumAuthor   bool `json:"is_premium_author" mapstructure:"is_premium_author"`

	// DaysSincePublished is only consumed by trained models.
	DaysSincePublished float64 `json:"days_since_published" mapstructure:"days_since_published"`
}

// Value returns the named numeric feature, booleans as 0/1. ok is false for
// unknown names.
func (p PredictionFeatures) Value(name string) (v float64, ok bool) {
	switch name {
	case "tag_count":
		return float64(p.TagCount), true
	case "category_count":
		return float64(p.CategoryCount), true
	case "description_length":
		return float64(p.DescriptionLength), true
	case "author_followers":
		return float64(p.AuthorFollowers), true
	case "face_count":
		return float64(p.FaceCount), true
	case "vertex_count":
		return float64(p.VertexCount), true
	case "animation_count":
		return float64(p.AnimationCount), true
	case "is_downloadable":
		return boolToFloat(p.IsDownloadable), true
	case "is_premium_author":
		return boolToFloat(p.IsPremiumAuthor), true
	case "days_since_published":
		return p.DaysSincePublished, true
	}
	return 0, false
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// PopularityCategory buckets a popularity score.
type PopularityCategory string

const (
	PopularityLow    PopularityCategory = "low"
	PopularityMedium PopularityCategory = "medium"
	PopularityHigh   PopularityCategory = "high"
)

// PopularityEstimate is the output of any popularity strategy.
type PopularityEstimate struct {
	PopularityScore float64            `json:"popularity_score"`
	Category        PopularityCategory `json:"category"`
	Confidence      float64            `json:"confidence"`
	ModelUsed       string             `json:"model_used,omitempty"`
}
