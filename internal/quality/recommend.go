package quality

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meshcast/meshcast/internal/models"
)

// Thresholds below which a dimension produces a recommendation.
const (
	descriptionThreshold = 50
	tagsThreshold        = 60
	polygonsThreshold    = 60
	accountThreshold     = 40
	technicalThreshold   = 50
)

// numberPrinter formats integers with thousands separators.
var numberPrinter = message.NewPrinter(language.English)

// recommendations lists improvements in fixed dimension order. The result is
// never nil; an empty list means no issues were found.
func (r *Rater) recommendations(scores map[string]float64, in models.ListingFeatures) []string {
	recs := []string{}

	if scores[models.DimensionDescription] < descriptionThreshold {
		recs = append(recs, "Add a detailed description: state what the model is for, "+
			"its technical specifications and the tools used to make it")
	}

	if scores[models.DimensionTags] < tagsThreshold {
		recs = append(recs, "Add more relevant tags (at least 5-10). "+
			"Use popular tags such as: pbr, lowpoly, game, realtime")
	}

	if scores[models.DimensionPolygons] < polygonsThreshold {
		optimal := r.tables.PolygonRange(in.Category)
		recs = append(recs, numberPrinter.Sprintf(
			"Optimize the polygon count. Current: %d, recommended for %s: %d-%d",
			in.FaceCount, in.Category, optimal.Min, optimal.Max))
	}

	if scores[models.DimensionAccount] < accountThreshold {
		recs = append(recs, "Consider upgrading to a PRO account for extended features and more buyer trust")
	}

	if scores[models.DimensionTechnical] < technicalThreshold {
		if !in.IsDownloadable {
			recs = append(recs, "Enable downloads for the model")
		}
		if !in.HasTextures {
			recs = append(recs, "Add textures to improve quality")
		}
	}

	return recs
}
