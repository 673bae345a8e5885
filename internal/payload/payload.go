// Package payload turns request bodies into the feature records consumed by
// the scoring engines.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/popularity"
	"github.com/meshcast/meshcast/internal/validation"
)

// ErrMalformedInput is returned when a payload is not a JSON object of the
// expected shape.
var ErrMalformedInput = errors.New("malformed input")

// Payload is the union of every field a listing request may carry. Absent
// fields keep their zero value except Category and AccountType, which
// default to "generic" and "basic".
type Payload struct {
	Description string   `mapstructure:"description" json:"description"`
	Tags        []string `mapstructure:"tags" json:"tags"`
	Categories  []string `mapstructure:"categories" json:"categories,omitempty"`
	Category    string   `mapstructure:"category" json:"category"`
	AccountType string   `mapstructure:"account_type" json:"account_type"`

	AuthorFollowers    int     `mapstructure:"author_followers" json:"author_followers"`
	FaceCount          int     `mapstructure:"face_count" json:"face_count"`
	VertexCount        int     `mapstructure:"vertex_count" json:"vertex_count"`
	AnimationCount     int     `mapstructure:"animation_count" json:"animation_count"`
	TagCount           int     `mapstructure:"tag_count" json:"tag_count"`
	CategoryCount      int     `mapstructure:"category_count" json:"category_count"`
	DescriptionLength  int     `mapstructure:"description_length" json:"description_length"`
	DaysSincePublished float64 `mapstructure:"days_since_published" json:"days_since_published"`

	IsDownloadable  bool `mapstructure:"is_downloadable" json:"is_downloadable"`
	IsPremiumAuthor bool `mapstructure:"is_premium_author" json:"is_premium_author"`
	HasTextures     bool `mapstructure:"has_textures" json:"has_textures"`
	HasPBR          bool `mapstructure:"has_pbr" json:"has_pbr"`
	IsRigged        bool `mapstructure:"is_rigged" json:"is_rigged"`
	IsAnimated      bool `mapstructure:"is_animated" json:"is_animated"`
}

// New returns a Payload with every default applied.
func New() Payload {
	return Payload{
		Category:    models.DefaultCategory,
		AccountType: string(models.AccountBasic),
	}
}

// Parse decodes and validates a JSON request body.
func Parse(data []byte) (Payload, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{}, fmt.Errorf("%w: empty payload", ErrMalformedInput)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedInput, err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Payload{}, fmt.Errorf("%w: payload must be a JSON object", ErrMalformedInput)
	}
	if errs := validation.ValidateListing(obj); len(errs) > 0 {
		return Payload{}, fmt.Errorf("%w: %s", ErrMalformedInput, strings.Join(errs, "; "))
	}
	return Decode(obj, false)
}

// Decode maps a generic document onto a defaults-filled Payload. With weak
// set, string cells such as "true" or "8500" are converted, which suits
// CSV-sourced rows.
func Decode(doc map[string]any, weak bool) (Payload, error) {
	p := New()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       jsonNumberHook,
		WeaklyTypedInput: weak,
		Result:           &p,
	})
	if err != nil {
		return Payload{}, fmt.Errorf("creating payload decoder: %w", err)
	}
	if err := dec.Decode(doc); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if p.Category == "" {
		p.Category = models.DefaultCategory
	}
	return p, nil
}

// Validate reports negative counts. Parse gets the same guarantee from the
// schema; Decode callers such as the CSV loader need it explicitly.
func (p Payload) Validate() error {
	counts := []struct {
		field string
		value float64
	}{
		{"author_followers", float64(p.AuthorFollowers)},
		{"face_count", float64(p.FaceCount)},
		{"vertex_count", float64(p.VertexCount)},
		{"animation_count", float64(p.AnimationCount)},
		{"tag_count", float64(p.TagCount)},
		{"category_count", float64(p.CategoryCount)},
		{"description_length", float64(p.DescriptionLength)},
		{"days_since_published", p.DaysSincePublished},
	}
	var errs []string
	for _, c := range counts {
		if c.value < 0 || math.IsNaN(c.value) {
			errs = append(errs, fmt.Sprintf("/%s: must be >= 0 but found %v", c.field, c.value))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrMalformedInput, strings.Join(errs, "; "))
	}
	return nil
}

// jsonNumberHook converts json.Number into int64 or float64 so whole
// numbers written as 8500.0 still decode into int fields. Integer targets
// reject fractions and values outside their range.
func jsonNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from != reflect.TypeOf(json.Number("")) {
		return data, nil
	}
	n := data.(json.Number)
	if i, err := n.Int64(); err == nil {
		if isInt(to) && reflect.Zero(to).OverflowInt(i) {
			return nil, fmt.Errorf("%s overflows %s", n, to)
		}
		return i, nil
	}
	f, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, err
	}
	if !isInt(to) {
		return f, err
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%s is not a whole number", n)
	}
	if err != nil || f >= math.MaxInt64 || f < math.MinInt64 || reflect.Zero(to).OverflowInt(int64(f)) {
		return nil, fmt.Errorf("%s overflows %s", n, to)
	}
	return int64(f), nil
}

func isInt(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// Listing returns the quality rater's view of the payload.
func (p Payload) Listing() models.ListingFeatures {
	return models.ListingFeatures{
		Description:     p.Description,
		Tags:            p.Tags,
		FaceCount:       p.FaceCount,
		Category:        p.Category,
		AccountType:     models.ParseAccountType(p.AccountType),
		AuthorFollowers: p.AuthorFollowers,
		IsDownloadable:  p.IsDownloadable,
		HasTextures:     p.HasTextures,
		HasPBR:          p.HasPBR,
		IsRigged:        p.IsRigged,
		IsAnimated:      p.IsAnimated,
	}.Normalize()
}

// Prediction returns the popularity estimators' view of the payload.
func (p Payload) Prediction() models.PredictionFeatures {
	return models.PredictionFeatures{
		TagCount:           p.TagCount,
		CategoryCount:      p.CategoryCount,
		DescriptionLength:  p.DescriptionLength,
		AuthorFollowers:    p.AuthorFollowers,
		FaceCount:          p.FaceCount,
		VertexCount:        p.VertexCount,
		AnimationCount:     p.AnimationCount,
		IsDownloadable:     p.IsDownloadable,
		IsPremiumAuthor:    p.IsPremiumAuthor,
		DaysSincePublished: p.DaysSincePublished,
	}
}

// Request builds the popularity chain input, including normalized text.
func (p Payload) Request() popularity.Request {
	return popularity.Request{
		Features: p.Prediction(),
		Text:     popularity.ListingText(p.Tags, p.Description, p.Categories),
	}
}
