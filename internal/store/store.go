// Package store persists batch forecasts in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/meshcast/meshcast/internal/models"
)

//go:embed sql/ddl.sql
var ddl embed.FS

// Record is one stored listing outcome. Exactly one of Forecast or Error
// is set.
type Record struct {
	Listing  string
	Forecast *models.Forecast
	Error    string
}

// Store wraps the database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: database path not specified")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	schema, err := ddl.ReadFile("sql/ddl.sql")
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("store: reading schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("store: creating schema in %s: %w", path, err)
	}
	slog.Debug("Opened forecast store", "path", path)
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores the records of one batch run in a single transaction.
func (s *Store) SaveRun(ctx context.Context, runID string, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecast
		(run_id, position, listing, model_used, popularity_score, category, confidence, total_score, grade, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	created := s.now().UTC()
	for i, r := range records {
		var (
			modelUsed, category, grade, errMsg sql.NullString
			score, confidence, total           sql.NullFloat64
		)
		if fc := r.Forecast; fc != nil {
			modelUsed = sql.NullString{String: fc.ModelUsed, Valid: true}
			category = sql.NullString{String: string(fc.Category), Valid: true}
			score = sql.NullFloat64{Float64: fc.PopularityScore, Valid: true}
			confidence = sql.NullFloat64{Float64: fc.Confidence, Valid: true}
			if q := fc.QualityRating; q != nil {
				total = sql.NullFloat64{Float64: q.TotalScore, Valid: true}
				grade = sql.NullString{String: string(q.Grade), Valid: true}
			}
		} else {
			errMsg = sql.NullString{String: r.Error, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, runID, i, r.Listing, modelUsed, score, category,
			confidence, total, grade, errMsg, created); err != nil {
			return fmt.Errorf("store: insert record %d of run %s: %w", i, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit run %s: %w", runID, err)
	}
	return nil
}

// RunSummary aggregates one stored run.
type RunSummary struct {
	RunID          string         `json:"run_id"`
	Total          int            `json:"total"`
	Failed         int            `json:"failed"`
	MeanPopularity float64        `json:"mean_popularity"`
	MeanQuality    float64        `json:"mean_quality"`
	Categories     map[string]int `json:"categories"`
	Grades         map[string]int `json:"grades"`
}

// Summary aggregates the records stored for runID.
func (s *Store) Summary(ctx context.Context, runID string) (*RunSummary, error) {
	sum := &RunSummary{
		RunID:      runID,
		Categories: map[string]int{},
		Grades:     map[string]int{},
	}

	row := s.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(popularity_score), 0),
			COALESCE(AVG(total_score), 0)
		FROM forecast WHERE run_id = ?`, runID)
	if err := row.Scan(&sum.Total, &sum.Failed, &sum.MeanPopularity, &sum.MeanQuality); err != nil {
		return nil, fmt.Errorf("store: summarizing run %s: %w", runID, err)
	}

	if err := s.countBy(ctx, runID, "category", sum.Categories); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, runID, "grade", sum.Grades); err != nil {
		return nil, err
	}
	return sum, nil
}

// countBy fills into with per-value counts of column. column is always one
// of the fixed names above, never user input.
func (s *Store) countBy(ctx context.Context, runID, column string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %[1]s, COUNT(*) FROM forecast WHERE run_id = ? AND %[1]s IS NOT NULL GROUP BY %[1]s`, column), runID)
	if err != nil {
		return fmt.Errorf("store: counting %s: %w", column, err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("store: scanning %s count: %w", column, err)
		}
		into[key] = n
	}
	return rows.Err()
}

// RunInfo identifies a stored run.
type RunInfo struct {
	RunID  string `json:"run_id"`
	Total  int    `json:"total"`
	Failed int    `json:"failed"`
}

// Runs lists the stored runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
			run_id,
			COUNT(*),
			SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END)
		FROM forecast GROUP BY run_id ORDER BY MIN(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: listing runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	runs := []RunInfo{}
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.RunID, &r.Total, &r.Failed); err != nil {
			return nil, fmt.Errorf("store: scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
