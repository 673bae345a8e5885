package artifact

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/popularity"
)

// LinearModel is a standardized linear regressor over named numeric
// features, optionally extended with a TF-IDF text term.
type LinearModel struct {
	Name           string     `json:"name"`
	TrainedAt      time.Time  `json:"trained_at"`
	FeatureColumns []string   `json:"feature_columns"`
	Scaler         Scaler     `json:"scaler"`
	Coefficients   []float64  `json:"coefficients"`
	Intercept      float64    `json:"intercept"`
	Text           *TextModel `json:"text,omitempty"`
}

// Scaler standardizes each feature column as (x - mean) / scale. Empty
// slices disable scaling.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// MaxNgram is the longest vocabulary term, in words, a TextModel matches.
const MaxNgram = 2

// TextModel maps listing text onto a fixed vocabulary of unigrams and
// bigrams ("low poly"). Term frequencies are weighted by IDF,
// L2-normalized and dotted with Weights.
type TextModel struct {
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf,omitempty"`
	Weights    []float64 `json:"weights"`
}

var _ popularity.Regressor = (*LinearModel)(nil)

// Validate checks that the artifact is internally consistent.
func (m *LinearModel) Validate() error {
	if len(m.FeatureColumns) == 0 {
		return errors.New("no feature columns")
	}
	if len(m.Coefficients) != len(m.FeatureColumns) {
		return fmt.Errorf("%d coefficients for %d feature columns", len(m.Coefficients), len(m.FeatureColumns))
	}
	var zero models.PredictionFeatures
	for _, col := range m.FeatureColumns {
		if _, ok := zero.Value(col); !ok {
			return fmt.Errorf("unknown feature column %q", col)
		}
	}
	if n := len(m.Scaler.Mean); n != 0 && (n != len(m.FeatureColumns) || len(m.Scaler.Scale) != n) {
		return fmt.Errorf("scaler has %d means and %d scales for %d feature columns",
			n, len(m.Scaler.Scale), len(m.FeatureColumns))
	}
	if t := m.Text; t != nil {
		if len(t.Vocabulary) != len(t.Weights) {
			return fmt.Errorf("text vocabulary has %d terms but %d weights", len(t.Vocabulary), len(t.Weights))
		}
		if len(t.IDF) != 0 && len(t.IDF) != len(t.Vocabulary) {
			return fmt.Errorf("text idf has %d entries for %d terms", len(t.IDF), len(t.Vocabulary))
		}
		for _, term := range t.Vocabulary {
			words := strings.Fields(term)
			if len(words) == 0 || len(words) > MaxNgram || strings.Join(words, " ") != term {
				return fmt.Errorf("text vocabulary term %q is not a 1 or %d word ngram", term, MaxNgram)
			}
		}
	}
	return nil
}

// Predict implements popularity.Regressor.
func (m *LinearModel) Predict(ctx context.Context, req popularity.Request) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	y := m.Intercept
	for i, col := range m.FeatureColumns {
		v, ok := req.Features.Value(col)
		if !ok {
			return 0, fmt.Errorf("unknown feature column %q", col)
		}
		if len(m.Scaler.Mean) > 0 {
			scale := m.Scaler.Scale[i]
			if scale == 0 {
				scale = 1
			}
			v = (v - m.Scaler.Mean[i]) / scale
		}
		y += m.Coefficients[i] * v
	}

	if m.Text != nil {
		y += m.Text.score(req.Text)
	}
	return y, nil
}

func (t *TextModel) score(text string) float64 {
	counts := make(map[string]float64)
	toks := strings.Fields(text)
	for i, tok := range toks {
		counts[tok]++
		if i > 0 {
			counts[toks[i-1]+" "+tok]++
		}
	}

	vec := make([]float64, len(t.Vocabulary))
	norm := 0.0
	for i, term := range t.Vocabulary {
		tf := counts[term]
		if tf == 0 {
			continue
		}
		if len(t.IDF) > 0 {
			tf *= t.IDF[i]
		}
		vec[i] = tf
		norm += tf * tf
	}
	if norm == 0 {
		return 0
	}
	norm = math.Sqrt(norm)

	sum := 0.0
	for i, w := range t.Weights {
		sum += w * vec[i] / norm
	}
	return sum
}
