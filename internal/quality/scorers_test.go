package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshcast/meshcast/internal/catalog"
	"github.com/meshcast/meshcast/internal/models"
)

func TestDescriptionScore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t ", 0},
		{"below 50 runes", strings.Repeat("ab ", 16), 0},
		{"50 runes", strings.Repeat("ab ", 17), 10},
		{"100 runes", strings.Repeat("ab ", 34), 20},
		{"200 runes", strings.Repeat("ab ", 67), 30},
		{"one keyword repeated", "model model model", 5},
		{"two keywords", "model texture", 20},
		{"multi-word keyword", "High poly model", 20},
		// seven keywords capped at 25, plus diversity
		{"keyword cap", "model texture polygon uv material pbr rigged", 35},
		{"sentence punctuation", "Nice chair.", 25},
		{"list marker", "chair - wood", 20},
		{"digits", "chair 42", 20},
		{"every bonus", "Hand-sculpted oak chair for interior scenes. Clean quad topology, " +
			"4,200 polygons; UV unwrapped with a single 2K texture atlas and PBR material set. " +
			"Suitable for real-time engines, renders or archviz walkthroughs without retopology work.", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescriptionScore(tt.in))
		})
	}
}

func TestTagsScore(t *testing.T) {
	r := NewRater(catalog.Default())
	tests := []struct {
		name     string
		tags     []string
		category string
		want     float64
	}{
		{"none", nil, "nature", 0},
		{"two unrelated", []string{"a", "b"}, "nature", 0},
		{"three specific", []string{"chair", "table", "lamp"}, "nature", 20},
		{"five specific", []string{"chair", "table", "lamp", "sofa", "desk"}, "nature", 40},
		{"ten specific", []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9"}, "nature", 50},
		{"generic tags are not specific", []string{"3d", "model", "object", "asset", "chair"}, "nature", 20},
		{"three relevant", []string{"nature", "environment", "landscape"}, "nature", 50},
		{"four relevant", []string{"nature", "environment", "landscape", "organic"}, "nature", 60},
		// five matches hit the 40 point relevance cap
		{"relevance cap", []string{"nature", "environment", "landscape", "organic", "plants"}, "nature", 80},
		{"relevance by substring", []string{"naturephoto"}, "nature", 10},
		{"category keyword case-insensitive", []string{"unity"}, "Game_Mobile", 10},
		{"popular tag", []string{"PBR"}, "nature", 10},
		{"popular tag must match exactly", []string{"pbr-ready"}, "nature", 0},
		{"full marks", []string{
			"game", "lowpoly", "pbr", "realtime", "unity",
			"unreal", "sword", "weapon", "fantasy", "medieval",
		}, "game_desktop", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.TagsScore(tt.tags, tt.category))
		})
	}
}

func TestPolygonScore(t *testing.T) {
	generic := catalog.PolygonRange{Min: 5000, Max: 50000}
	mobile := catalog.PolygonRange{Min: 1000, Max: 10000}
	tests := []struct {
		name  string
		faces int
		rng   catalog.PolygonRange
		want  float64
	}{
		{"zero", 0, generic, 0},
		{"negative", -5, generic, 0},
		{"midpoint", 27500, generic, 100},
		{"lower boundary", 5000, generic, 80},
		{"upper boundary", 50000, generic, 80},
		{"quarter from mid", 16250, generic, 90},
		{"mobile upper boundary", 10000, mobile, 80},
		{"half of min", 2500, generic, 35},
		{"below min mobile", 550, mobile, 38.5},
		{"floor", 1000, generic, 20},
		{"floor far below", 1, generic, 20},
		{"half over max", 75000, generic, 55},
		{"double max", 100000, generic, 40},
		{"triple max", 150000, generic, 30},
		{"five times max", 250000, generic, 10},
		{"six times max", 300000, generic, 10},
		{"far above", 5000000, generic, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PolygonScore(tt.faces, tt.rng), 1e-9)
		})
	}
}

func TestPolygonScore_ContinuityAtEdges(t *testing.T) {
	generic := catalog.PolygonRange{Min: 5000, Max: 50000}
	assert.InDelta(t, 69.986, PolygonScore(4999, generic), 1e-9)
	assert.InDelta(t, 69.9994, PolygonScore(50001, generic), 1e-9)
}

func TestAccountScore(t *testing.T) {
	tests := []struct {
		account   models.AccountType
		followers int
		want      float64
	}{
		{models.AccountPremium, 1000, 100},
		{models.AccountPremium, 999, 90},
		{models.AccountPremium, 0, 50},
		{models.AccountPro, 500, 75},
		{models.AccountPro, 499, 65},
		{models.AccountPro, 0, 35},
		{models.AccountBasic, 100, 45},
		{models.AccountBasic, 99, 35},
		{models.AccountBasic, 50, 35},
		{models.AccountBasic, 49, 25},
		{models.AccountBasic, 10, 25},
		{models.AccountBasic, 9, 15},
		{models.AccountBasic, 0, 15},
		{"", 1000, 65},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AccountScore(tt.account, tt.followers), "%s/%d", tt.account, tt.followers)
	}
}

func TestTechnicalScore(t *testing.T) {
	tests := []struct {
		name string
		in   models.ListingFeatures
		want float64
	}{
		{"none", models.ListingFeatures{}, 0},
		{"downloadable", models.ListingFeatures{IsDownloadable: true}, 20},
		{"textures", models.ListingFeatures{HasTextures: true}, 25},
		{"pbr", models.ListingFeatures{HasPBR: true}, 25},
		{"rigged", models.ListingFeatures{IsRigged: true}, 15},
		{"animated", models.ListingFeatures{IsAnimated: true}, 15},
		{"all", models.ListingFeatures{
			IsDownloadable: true, HasTextures: true, HasPBR: true, IsRigged: true, IsAnimated: true,
		}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TechnicalScore(tt.in))
		})
	}
}
