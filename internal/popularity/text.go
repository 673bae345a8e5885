package popularity

import (
	"strings"
)

// NormalizeText lower-cases s, turns anything other than ASCII letters,
// digits and whitespace into spaces and collapses runs of whitespace.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ListingText builds the text input of the advanced model from tags, the
// description and category names, in that order.
func ListingText(tags []string, description string, categories []string) string {
	parts := make([]string, 0, 3)
	parts = append(parts, strings.Join(tags, " "), description, strings.Join(categories, " "))
	return NormalizeText(strings.Join(parts, " "))
}
