// Package catalog holds the read-only lookup tables shared by the scoring
// engines: optimal polygon ranges per use case and recommended tags per
// category keyword.
package catalog

import (
	"fmt"
	"strings"
)

const (
	// FallbackRange is the polygon range used for unknown use cases.
	FallbackRange = "generic"
	// FallbackTags is the tag list used when no category keyword matches.
	FallbackTags = "prop"
)

// PolygonRange is an inclusive optimal face-count band.
type PolygonRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Mid returns the centre of the range.
func (r PolygonRange) Mid() float64 {
	return float64(r.Min+r.Max) / 2
}

// HalfWidth returns half the width of the range.
func (r PolygonRange) HalfWidth() float64 {
	return float64(r.Max-r.Min) / 2
}

// Contains reports whether n lies within the range.
func (r PolygonRange) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// TagSet is the recommended tag list for one category keyword.
type TagSet struct {
	Keyword string   `json:"keyword" yaml:"keyword"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// Tables is an immutable snapshot of the lookup tables. Build it once with
// New or Default and share it freely between goroutines.
type Tables struct {
	polygonRanges map[string]PolygonRange
	tagSets       []TagSet
}

// Overrides carries configured replacements or additions to the defaults.
type Overrides struct {
	PolygonRanges   map[string]PolygonRange
	RecommendedTags []TagSet
}

var defaultPolygonRanges = map[string]PolygonRange{
	"game_mobile":  {Min: 1000, Max: 10000},
	"game_desktop": {Min: 5000, Max: 50000},
	"architecture": {Min: 10000, Max: 100000},
	"showcase":     {Min: 50000, Max: 500000},
	FallbackRange:  {Min: 5000, Max: 50000},
}

// Declaration order is significant: the first keyword contained in a
// category wins.
var defaultTagSets = []TagSet{
	{Keyword: "game", Tags: []string{"game", "lowpoly", "pbr", "realtime", "unity", "unreal"}},
	{Keyword: "architecture", Tags: []string{"architecture", "building", "interior", "exterior", "archviz"}},
	{Keyword: "character", Tags: []string{"character", "rigged", "animated", "humanoid", "creature"}},
	{Keyword: "vehicle", Tags: []string{"vehicle", "car", "transportation", "pbr", "lowpoly"}},
	{Keyword: "nature", Tags: []string{"nature", "environment", "landscape", "organic", "plants"}},
	{Keyword: FallbackTags, Tags: []string{"prop", "asset", "object", "3d", "model"}},
}

var defaultTables = mustBuild(Overrides{})

// Default returns the built-in tables.
func Default() *Tables {
	return defaultTables
}

// New builds tables from the defaults with the given overrides applied.
// Overridden polygon ranges replace same-named defaults; overridden tag sets
// replace the default with the same keyword in place, new keywords are
// appended before the fallback entry.
func New(o Overrides) (*Tables, error) {
	ranges := make(map[string]PolygonRange, len(defaultPolygonRanges)+len(o.PolygonRanges))
	for k, v := range defaultPolygonRanges {
		ranges[k] = v
	}
	for k, v := range o.PolygonRanges {
		name := strings.ToLower(strings.TrimSpace(k))
		if name == "" {
			return nil, fmt.Errorf("polygon range with empty name")
		}
		if v.Min <= 0 || v.Max <= v.Min {
			return nil, fmt.Errorf("polygon range %q: need 0 < min < max, got %d-%d", name, v.Min, v.Max)
		}
		ranges[name] = v
	}

	sets := make([]TagSet, 0, len(defaultTagSets)+len(o.RecommendedTags))
	for _, ts := range defaultTagSets {
		sets = append(sets, cloneTagSet(ts))
	}
	for _, ts := range o.RecommendedTags {
		kw := strings.ToLower(strings.TrimSpace(ts.Keyword))
		if kw == "" {
			return nil, fmt.Errorf("recommended tag set with empty keyword")
		}
		if len(ts.Tags) == 0 {
			return nil, fmt.Errorf("recommended tag set %q has no tags", kw)
		}
		next := TagSet{Keyword: kw, Tags: lowerAll(ts.Tags)}
		if i := indexOf(sets, kw); i >= 0 {
			sets[i] = next
			continue
		}
		fallback := len(sets) - 1
		sets = append(sets[:fallback], next, sets[fallback])
	}

	return &Tables{polygonRanges: ranges, tagSets: sets}, nil
}

func mustBuild(o Overrides) *Tables {
	t, err := New(o)
	if err != nil {
		panic(fmt.Sprintf("building default catalog: %v", err))
	}
	return t
}

// PolygonRange returns the optimal range for a use case, falling back to
// the generic range for unknown names.
func (t *Tables) PolygonRange(useCase string) PolygonRange {
	if r, ok := t.polygonRanges[useCase]; ok {
		return r
	}
	return t.polygonRanges[FallbackRange]
}

// PolygonRanges returns a copy of every configured range.
func (t *Tables) PolygonRanges() map[string]PolygonRange {
	out := make(map[string]PolygonRange, len(t.polygonRanges))
	for k, v := range t.polygonRanges {
		out[k] = v
	}
	return out
}

// RecommendedTags returns the tag list of the first keyword (in declaration
// order) contained in category, compared case-insensitively, or the
// fallback list when none matches.
func (t *Tables) RecommendedTags(category string) []string {
	lower := strings.ToLower(category)
	for _, ts := range t.tagSets {
		if strings.Contains(lower, ts.Keyword) {
			return ts.Tags
		}
	}
	return t.tagSets[indexOf(t.tagSets, FallbackTags)].Tags
}

// TagSets returns a copy of the tag sets in declaration order.
func (t *Tables) TagSets() []TagSet {
	out := make([]TagSet, len(t.tagSets))
	for i, ts := range t.tagSets {
		out[i] = cloneTagSet(ts)
	}
	return out
}

func indexOf(sets []TagSet, keyword string) int {
	for i, ts := range sets {
		if ts.Keyword == keyword {
			return i
		}
	}
	return -1
}

func cloneTagSet(ts TagSet) TagSet {
	return TagSet{Keyword: ts.Keyword, Tags: append([]string(nil), ts.Tags...)}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
