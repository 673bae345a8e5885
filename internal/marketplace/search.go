package marketplace

import (
	"net/url"
	"strconv"
)

// sortFields maps friendly sort names to the API's sort_by values. Other
// values are passed through unchanged.
var sortFields = map[string]string{
	"likes":  "-likeCount",
	"views":  "-viewCount",
	"recent": "-publishedAt",
}

// SearchParams narrows a model listing.
type SearchParams struct {
	Query        string
	Categories   []string
	Tags         []string
	Sort         string
	Downloadable bool
	Animated     bool
	// Days limits results to models published in the last Days days.
	Days int
	// PageSize is the number of results per page.
	PageSize int
}

// BuildSearchParams converts sp into query parameters. Categories and tags
// repeat their parameter once per value.
func BuildSearchParams(sp SearchParams) url.Values {
	q := url.Values{}
	if sp.Query != "" {
		q.Set("q", sp.Query)
	}
	for _, c := range sp.Categories {
		q.Add("categories", c)
	}
	for _, t := range sp.Tags {
		q.Add("tags", t)
	}
	if sp.Sort != "" {
		if f, ok := sortFields[sp.Sort]; ok {
			q.Set("sort_by", f)
		} else {
			q.Set("sort_by", sp.Sort)
		}
	}
	if sp.Downloadable {
		q.Set("downloadable", "true")
	}
	if sp.Animated {
		q.Set("animated", "true")
	}
	if sp.Days > 0 {
		q.Set("date", strconv.Itoa(sp.Days))
	}
	if sp.PageSize > 0 {
		q.Set("count", strconv.Itoa(sp.PageSize))
	}
	return q
}
