package quality

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/meshcast/meshcast/internal/catalog"
	"github.com/meshcast/meshcast/internal/models"
)

var descriptionKeywords = []string{
	"model", "3d", "texture", "polygon", "uv", "material",
	"pbr", "low poly", "high poly", "rigged", "animated",
}

var genericTags = map[string]bool{
	"3d":     true,
	"model":  true,
	"object": true,
	"asset":  true,
}

var popularTags = []string{"pbr", "lowpoly", "game", "realtime", "blender", "maya"}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// DescriptionScore rates a listing description on length, domain keywords,
// structure, technical detail and vocabulary diversity.
func DescriptionScore(description string) float64 {
	if description == "" {
		return 0
	}

	text := strings.TrimSpace(description)
	lower := strings.ToLower(text)
	score := 0.0

	switch n := utf8.RuneCountInString(text); {
	case n >= 200:
		score += 30
	case n >= 100:
		score += 20
	case n >= 50:
		score += 10
	}

	found := 0
	for _, kw := range descriptionKeywords {
		if strings.Contains(lower, kw) {
			found++
		}
	}
	score += math.Min(float64(found*5), 25)

	if strings.ContainsAny(text, ".!?;:") {
		score += 15
	}
	if strings.ContainsAny(text, "-*•\n") {
		score += 10
	}
	if strings.IndexFunc(text, unicode.IsDigit) >= 0 {
		score += 10
	}
	if lexicalDiversity(lower) > 0.7 {
		score += 10
	}

	return clamp100(score)
}

// lexicalDiversity is the ratio of distinct words to all words.
func lexicalDiversity(text string) float64 {
	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique)) / float64(len(words))
}

// TagsScore rates a tag list on count, relevance to the category,
// specificity and use of popular marketplace tags.
func (r *Rater) TagsScore(tags []string, category string) float64 {
	if len(tags) == 0 {
		return 0
	}

	lower := make([]string, len(tags))
	for i, t := range tags {
		lower[i] = strings.ToLower(t)
	}

	score := 0.0
	switch n := len(tags); {
	case n >= 10:
		score += 30
	case n >= 5:
		score += 20
	case n >= 3:
		score += 10
	}

	recommended := r.tables.RecommendedTags(category)
	matching := 0
	for _, tag := range lower {
		for _, rec := range recommended {
			if strings.Contains(tag, rec) {
				matching++
				break
			}
		}
	}
	score += math.Min(float64(matching*10), 40)

	specific := 0
	for _, tag := range lower {
		if !genericTags[tag] {
			specific++
		}
	}
	switch {
	case specific >= 5:
		score += 20
	case specific >= 3:
		score += 10
	}

	if hasPopularTag(lower) {
		score += 10
	}

	return clamp100(score)
}

func hasPopularTag(lower []string) bool {
	for _, tag := range lower {
		for _, p := range popularTags {
			if tag == p {
				return true
			}
		}
	}
	return false
}

// PolygonScore rates a face count against an optimal range. Counts inside
// the range score 80 to 100 (100 at the midpoint), counts below it decay
// linearly to a floor of 20, counts above it fall off in steps to 10.
func PolygonScore(faceCount int, optimal catalog.PolygonRange) float64 {
	if faceCount <= 0 {
		return 0
	}
	f := float64(faceCount)

	if optimal.Contains(faceCount) {
		score := 100 - (math.Abs(f-optimal.Mid())/optimal.HalfWidth())*20
		return clamp100(math.Max(score, 80))
	}

	if faceCount < optimal.Min {
		return clamp100(math.Max(f/float64(optimal.Min)*70, 20))
	}

	excess := (f - float64(optimal.Max)) / float64(optimal.Max)
	switch {
	case excess < 1:
		return clamp100(70 - excess*30)
	case excess < 5:
		return clamp100(40 - math.Min(excess-1, 3)*10)
	default:
		return 10
	}
}

// AccountScore rates the author's account tier and audience size.
func AccountScore(account models.AccountType, followers int) float64 {
	score := 0.0

	switch account {
	case models.AccountPremium:
		score += 50
	case models.AccountPro:
		score += 35
	default:
		score += 15
	}

	switch {
	case followers >= 1000:
		score += 50
	case followers >= 500:
		score += 40
	case followers >= 100:
		score += 30
	case followers >= 50:
		score += 20
	case followers >= 10:
		score += 10
	}

	return clamp100(score)
}

// TechnicalScore sums fixed bonuses for the listing's technical features.
func TechnicalScore(in models.ListingFeatures) float64 {
	score := 0.0
	if in.IsDownloadable {
		score += 20
	}
	if in.HasTextures {
		score += 25
	}
	if in.HasPBR {
		score += 25
	}
	if in.IsRigged {
		score += 15
	}
	if in.IsAnimated {
		score += 15
	}
	return clamp100(score)
}
