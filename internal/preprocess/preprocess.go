// Package preprocess turns raw marketplace model records into training rows
// for the popularity models.
package preprocess

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/meshcast/meshcast/internal/metrics"
	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/popularity"
	"github.com/meshcast/meshcast/internal/validation"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Named is a tag or category reference.
type Named struct {
	Name string `json:"name"`
}

// User is the author of a raw model record.
type User struct {
	Username      string `json:"username"`
	Account       string `json:"account"`
	FollowerCount int    `json:"followerCount"`
}

// RawModel is a model record as returned by the marketplace API.
type RawModel struct {
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Tags           []Named   `json:"tags"`
	Categories     []Named   `json:"categories"`
	FaceCount      int       `json:"faceCount"`
	VertexCount    int       `json:"vertexCount"`
	AnimationCount int       `json:"animationCount"`
	IsDownloadable bool      `json:"isDownloadable"`
	User           User      `json:"user"`
	ViewCount      int       `json:"viewCount"`
	LikeCount      int       `json:"likeCount"`
	DownloadCount  int       `json:"downloadCount"`
	PublishedAt    Timestamp `json:"publishedAt"`
}

// Row is one training example.
type Row struct {
	UID string `json:"model_uid"`
	models.PredictionFeatures
	// EngagementScore is the log-weighted views/likes/downloads score.
	EngagementScore float64 `json:"engagement_score"`
	// PopularityScore is the regression target, see popularity.PopularityLabel.
	PopularityScore float64 `json:"popularity_score"`
}

// Preprocessor converts raw records. The clock is injectable for tests.
type Preprocessor struct {
	now func() time.Time
}

// New returns a Preprocessor. A nil now uses time.Now.
func New(now func() time.Time) *Preprocessor {
	if now == nil {
		now = time.Now
	}
	return &Preprocessor{now: now}
}

// ProcessModel converts one raw record.
func (p *Preprocessor) ProcessModel(m RawModel) Row {
	return Row{
		UID: m.UID,
		PredictionFeatures: models.PredictionFeatures{
			TagCount:           len(m.Tags),
			CategoryCount:      len(m.Categories),
			DescriptionLength:  utf8.RuneCountInString(strings.TrimSpace(m.Description)),
			AuthorFollowers:    m.User.FollowerCount,
			FaceCount:          m.FaceCount,
			VertexCount:        m.VertexCount,
			AnimationCount:     m.AnimationCount,
			IsDownloadable:     m.IsDownloadable,
			IsPremiumAuthor:    isPremium(m.User.Account),
			DaysSincePublished: p.daysSince(m.PublishedAt.Time),
		},
		EngagementScore: EngagementScore(m.ViewCount, m.LikeCount, m.DownloadCount),
		PopularityScore: popularity.PopularityLabel(m.ViewCount, m.LikeCount, m.DownloadCount, m.FaceCount),
	}
}

// ProcessModels converts every record, preserving order.
func (p *Preprocessor) ProcessModels(raw []RawModel) []Row {
	rows := make([]Row, 0, len(raw))
	for _, m := range raw {
		rows = append(rows, p.ProcessModel(m))
	}
	return rows
}

func (p *Preprocessor) daysSince(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return p.now().Sub(t).Hours() / 24
}

func isPremium(account string) bool {
	switch models.ParseAccountType(account) {
	case models.AccountPro, models.AccountPremium:
		return true
	}
	return false
}

// EngagementScore is a log-damped weighted sum of views, likes and
// downloads.
func EngagementScore(views, likes, downloads int) float64 {
	return math.Log1p(float64(views))*0.3 +
		math.Log1p(float64(likes))*0.4 +
		math.Log1p(float64(downloads))*0.3
}

// FilterOutliers keeps rows whose engagement score lies within threshold
// population standard deviations of the mean.
func FilterOutliers(rows []Row, threshold float64) []Row {
	if len(rows) == 0 {
		return rows
	}
	scores := make([]float64, len(rows))
	for i, r := range rows {
		scores[i] = r.EngagementScore
	}
	mean, sd := metrics.Mean(scores), metrics.StdDev(scores)

	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if math.Abs(r.EngagementScore-mean) <= threshold*sd {
			kept = append(kept, r)
		}
	}
	return kept
}

// NormalizedMax is the top of the Normalize scale.
const NormalizedMax = 100

// Normalize min-max scales face count, vertex count and author followers
// onto 0..NormalizedMax, truncating to whole numbers. A column with a
// single distinct value becomes 0. rows is not modified.
func Normalize(rows []Row) []Row {
	if len(rows) == 0 {
		return rows
	}
	columns := []func(*Row) *int{
		func(r *Row) *int { return &r.FaceCount },
		func(r *Row) *int { return &r.VertexCount },
		func(r *Row) *int { return &r.AuthorFollowers },
	}

	out := slices.Clone(rows)
	for _, col := range columns {
		lo, hi := *col(&rows[0]), *col(&rows[0])
		for i := range rows {
			v := *col(&rows[i])
			lo, hi = min(lo, v), max(hi, v)
		}
		for i := range out {
			*col(&out[i]) = scale(*col(&rows[i]), lo, hi)
		}
	}
	return out
}

func scale(v, lo, hi int) int {
	if hi == lo {
		return 0
	}
	return int(float64(v-lo) / float64(hi-lo) * NormalizedMax)
}

// Summary describes the engagement and label distributions of a row set.
type Summary struct {
	Engagement metrics.Summary `json:"engagement"`
	Popularity metrics.Summary `json:"popularity"`
}

// Summarize computes distribution statistics for rows.
func Summarize(rows []Row) Summary {
	engagement := make([]float64, len(rows))
	label := make([]float64, len(rows))
	for i, r := range rows {
		engagement[i] = r.EngagementScore
		label[i] = r.PopularityScore
	}
	return Summary{
		Engagement: metrics.Summarize(engagement),
		Popularity: metrics.Summarize(label),
	}
}

// InvalidExportError reports schema violations in a raw export file.
type InvalidExportError struct {
	Path       string
	Violations []validation.Violation
}

func (e *InvalidExportError) Error() string {
	msgs := validation.Strings(e.Violations)
	if len(msgs) > 3 {
		msgs = append(msgs[:3], fmt.Sprintf("and %d more", len(e.Violations)-3))
	}
	return fmt.Sprintf("invalid raw export %s: %s", e.Path, strings.Join(msgs, "; "))
}

// LoadRaw reads a JSON array of raw model records and checks it against
// the raw export schema before decoding.
func LoadRaw(path string) ([]RawModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw models: %w", err)
	}
	return ParseRaw(data, path)
}

// ParseRaw validates and decodes an in-memory raw export. name identifies
// the data in errors.
func ParseRaw(data []byte, name string) ([]RawModel, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing raw models %s: %w", name, err)
	}
	if vs := validation.RawModels.Validate(doc); len(vs) > 0 {
		return nil, &InvalidExportError{Path: name, Violations: vs}
	}
	var raw []RawModel
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing raw models %s: %w", name, err)
	}
	return raw, nil
}

// RawSummary describes a raw export.
type RawSummary struct {
	Models        int     `json:"models"`
	MeanViews     float64 `json:"mean_views"`
	MeanLikes     float64 `json:"mean_likes"`
	MeanDownloads float64 `json:"mean_downloads"`
	Categories    int     `json:"unique_categories"`
	Tags          int     `json:"unique_tags"`
}

// DescribeRaw computes engagement means and distinct tag and category
// counts.
func DescribeRaw(raw []RawModel) RawSummary {
	views := make([]float64, len(raw))
	likes := make([]float64, len(raw))
	downloads := make([]float64, len(raw))
	categories := map[string]struct{}{}
	tags := map[string]struct{}{}
	for i, m := range raw {
		views[i] = float64(m.ViewCount)
		likes[i] = float64(m.LikeCount)
		downloads[i] = float64(m.DownloadCount)
		for _, c := range m.Categories {
			categories[c.Name] = struct{}{}
		}
		for _, t := range m.Tags {
			tags[t.Name] = struct{}{}
		}
	}
	return RawSummary{
		Models:        len(raw),
		MeanViews:     metrics.Mean(views),
		MeanLikes:     metrics.Mean(likes),
		MeanDownloads: metrics.Mean(downloads),
		Categories:    len(categories),
		Tags:          len(tags),
	}
}

// Save writes rows as an indented JSON array.
func Save(path string, rows []Row) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
