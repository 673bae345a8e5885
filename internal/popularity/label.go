package popularity

import "math"

// The label curve always uses the generic optimal band.
const (
	labelRangeMin = 5000
	labelRangeMax = 50000
	labelPenalty  = 0.5
)

// LabelPolygonScore is the polygon term of the training label, on a 0 to 10
// scale. It is deliberately a different curve from quality.PolygonScore.
func LabelPolygonScore(faceCount int) float64 {
	if faceCount <= 0 {
		return 0
	}
	f := float64(faceCount)

	switch {
	case faceCount >= labelRangeMin && faceCount <= labelRangeMax:
		mid := float64(labelRangeMin+labelRangeMax) / 2
		half := float64(labelRangeMax-labelRangeMin) / 2
		return 10 * (1 - math.Abs(f-mid)/half*0.2)
	case faceCount < labelRangeMin:
		return math.Log1p(f) * (f / labelRangeMin) * labelPenalty
	default:
		excess := (f - labelRangeMax) / labelRangeMax
		return 10 / (1 + excess*labelPenalty)
	}
}

// PopularityLabel combines engagement counters and geometry into the
// regression target the trained models are fitted against.
func PopularityLabel(views, likes, downloads, faceCount int) float64 {
	return math.Log1p(float64(views))*0.25 +
		math.Log1p(float64(likes))*0.35 +
		math.Log1p(float64(downloads))*0.25 +
		LabelPolygonScore(faceCount)*0.15
}
