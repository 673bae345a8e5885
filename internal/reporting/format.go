package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/meshcast/meshcast/internal/forecast"
	"github.com/meshcast/meshcast/internal/models"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatText, FormatMarkdown, FormatHTML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want json, text, markdown or html)", s)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// WriteQuality renders a quality report.
func WriteQuality(w io.Writer, f Format, r models.QualityReport) error {
	return write(w, f, r, func(d doc) { d.quality(r) })
}

// WriteEstimate renders a popularity estimate.
func WriteEstimate(w io.Writer, f Format, e models.PopularityEstimate) error {
	return write(w, f, e, func(d doc) { d.estimate(e) })
}

// WriteForecast renders a combined forecast.
func WriteForecast(w io.Writer, f Format, fc models.Forecast) error {
	return write(w, f, fc, func(d doc) {
		d.estimate(fc.PopularityEstimate)
		if fc.QualityRating != nil {
			d.quality(*fc.QualityRating)
		}
	})
}

// WriteBatch renders batch results with their summary.
func WriteBatch(w io.Writer, f Format, results []forecast.Result, summary BatchSummary) error {
	v := struct {
		Summary BatchSummary      `json:"summary"`
		Results []forecast.Result `json:"results"`
	}{summary, results}
	return write(w, f, v, func(d doc) { d.batch(results, summary) })
}

func write(w io.Writer, f Format, v any, build func(doc)) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatText:
		var b strings.Builder
		build(doc{b: &b, md: false})
		_, err := io.WriteString(w, b.String())
		return err
	case FormatMarkdown:
		var b strings.Builder
		build(doc{b: &b, md: true})
		_, err := io.WriteString(w, b.String())
		return err
	case FormatHTML:
		var b strings.Builder
		build(doc{b: &b, md: true})
		var out bytes.Buffer
		if err := markdown.Convert([]byte(b.String()), &out); err != nil {
			return fmt.Errorf("rendering html: %w", err)
		}
		_, err := w.Write(out.Bytes())
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}
