package reporting

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meshcast/meshcast/internal/forecast"
	"github.com/meshcast/meshcast/internal/metrics"
	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/statistics"
)

var printer = message.NewPrinter(language.English)

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Total      int                               `json:"total"`
	Failed     int                               `json:"failed"`
	Popularity metrics.Summary                   `json:"popularity"`
	Quality    metrics.Summary                   `json:"quality"`
	Categories map[models.PopularityCategory]int `json:"categories"`

	// PopularityCI is a 95% bootstrap interval for the mean popularity.
	PopularityCI statistics.ConfidenceInterval `json:"popularity_ci"`
}

// SummarizeBatch computes the summary of batch results.
func SummarizeBatch(results []forecast.Result) BatchSummary {
	s := BatchSummary{Total: len(results), Categories: map[models.PopularityCategory]int{}}
	var pop, qual []float64
	for _, r := range results {
		if r.Forecast == nil {
			s.Failed++
			continue
		}
		pop = append(pop, r.Forecast.PopularityScore)
		s.Categories[r.Forecast.Category]++
		if q := r.Forecast.QualityRating; q != nil {
			qual = append(qual, q.TotalScore)
		}
	}
	s.Popularity = metrics.Summarize(pop)
	s.Quality = metrics.Summarize(qual)
	s.PopularityCI = statistics.BootstrapMean(pop, 0.95, statistics.DefaultSeed)
	return s
}

// doc builds either Markdown or aligned plain text from the same calls.
type doc struct {
	b  *strings.Builder
	md bool
}

func (d doc) heading(s string) {
	if d.md {
		fmt.Fprintf(d.b, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(d.b, "=== %s ===\n\n", s)
}

func (d doc) line(format string, args ...any) {
	d.b.WriteString(printer.Sprintf(format, args...))
	d.b.WriteString("\n")
}

func (d doc) blank() {
	d.b.WriteString("\n")
}

func (d doc) list(items []string) {
	for _, it := range items {
		if d.md {
			fmt.Fprintf(d.b, "- %s\n", it)
		} else {
			fmt.Fprintf(d.b, "  • %s\n", it)
		}
	}
	d.blank()
}

// table writes a header row and data rows. Plain text columns are padded
// to their display width.
func (d doc) table(header []string, rows [][]string) {
	if d.md {
		d.b.WriteString("| " + strings.Join(header, " | ") + " |\n")
		seps := make([]string, len(header))
		for i := range seps {
			seps[i] = "---"
		}
		d.b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
		for _, r := range rows {
			d.b.WriteString("| " + strings.Join(r, " | ") + " |\n")
		}
		d.blank()
		return
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	writeRow := func(cells []string) {
		padded := make([]string, len(cells))
		for i, c := range cells {
			padded[i] = padRight(c, widths[i])
		}
		d.b.WriteString("  " + strings.TrimRight(strings.Join(padded, "  "), " ") + "\n")
	}
	writeRow(header)
	for _, r := range rows {
		writeRow(r)
	}
	d.blank()
}

func (d doc) quality(r models.QualityReport) {
	d.heading("Quality")
	d.line("Total score: %.2f / 100 (grade %s, %s)", r.TotalScore, r.Grade, InterpretGrade(r.Grade))
	d.blank()

	rows := make([][]string, 0, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		rows = append(rows, []string{dim, printer.Sprintf("%.1f", r.Scores[dim])})
	}
	d.table([]string{"Dimension", "Score"}, rows)

	if len(r.Recommendations) == 0 {
		d.line("No issues found.")
		d.blank()
		return
	}
	d.line("Recommendations:")
	if d.md {
		d.blank()
	}
	d.list(r.Recommendations)
}

func (d doc) estimate(e models.PopularityEstimate) {
	d.heading("Popularity")
	d.line("%s", InterpretEstimate(e))
	d.blank()
}

func (d doc) batch(results []forecast.Result, s BatchSummary) {
	d.heading("Batch")
	d.line("Listings: %d (%d failed)", s.Total, s.Failed)
	d.line("Popularity: mean %.2f (95%% CI %.2f-%.2f), median %.2f, p90 %.2f",
		s.Popularity.Mean, s.PopularityCI.Lower, s.PopularityCI.Upper, s.Popularity.P50, s.Popularity.P90)
	d.line("Quality: mean %.2f, median %.2f", s.Quality.Mean, s.Quality.P50)
	d.line("Categories: high %d, medium %d, low %d",
		s.Categories[models.PopularityHigh], s.Categories[models.PopularityMedium], s.Categories[models.PopularityLow])
	d.blank()

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Forecast == nil {
			rows = append(rows, []string{printer.Sprintf("%d", r.Index+1), "-", "-", "-", "error: " + r.Error})
			continue
		}
		fc := r.Forecast
		quality, grade := "-", "-"
		if fc.QualityRating != nil {
			quality = printer.Sprintf("%.2f", fc.QualityRating.TotalScore)
			grade = string(fc.QualityRating.Grade)
		}
		rows = append(rows, []string{
			printer.Sprintf("%d", r.Index+1),
			printer.Sprintf("%.2f", fc.PopularityScore),
			string(fc.Category),
			quality,
			grade + " (" + fc.ModelUsed + ")",
		})
	}
	d.table([]string{"#", "Popularity", "Category", "Quality", "Grade (model)"}, rows)
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
