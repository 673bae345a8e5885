package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/dataset"
	"github.com/meshcast/meshcast/internal/forecast"
	"github.com/meshcast/meshcast/internal/payload"
	"github.com/meshcast/meshcast/internal/reporting"
	"github.com/meshcast/meshcast/internal/spinner"
	"github.com/meshcast/meshcast/internal/store"
)

func newBatchCommand() *cobra.Command {
	var (
		format  string
		workers int
		dbPath  string
		runID   string
		rows    string
	)

	cmd := &cobra.Command{
		Use:   "batch <listings.csv|.json|.jsonl>",
		Short: "Forecast many listings at once",
		Long: `Forecast every listing in a CSV, JSON array or JSON Lines file.

Listings are scored concurrently and reported in input order. A listing that
fails is reported in place and does not stop the others; the command then
exits with status 2. With --db the results are also recorded in a SQLite
database under --run-id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}

			items, err := dataset.LoadPayloads(args[0])
			if err != nil {
				return err
			}
			offset := 0
			if rows != "" {
				r, err := dataset.ParseRange(rows)
				if err != nil {
					return err
				}
				if items, offset, err = dataset.Select(items, r); err != nil {
					return err
				}
			}
			svc, err := loadService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			slog.Info("Scoring batch", "listings", len(items), "workers", workers)
			stop := spinner.Start(cmd.ErrOrStderr(), fmt.Sprintf("Scoring %d listings", len(items)))
			results, err := svc.Batch(cmd.Context(), items, workers)
			stop()
			if err != nil {
				return err
			}

			if dbPath != "" {
				if runID == "" {
					runID = uuid.NewString()
				}
				if err := saveRun(cmd.Context(), dbPath, runID, items, results); err != nil {
					return err
				}
				slog.Info("Stored batch run", "run_id", runID, "db", dbPath)
			}
			for i := range results {
				results[i].Index += offset
			}

			summary := reporting.SummarizeBatch(results)
			if err := reporting.WriteBatch(cmd.OutOrStdout(), f, results, summary); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return &ReportedError{
					Message: fmt.Sprintf("batch completed with %d of %d listings failed", summary.Failed, summary.Total),
				}
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent workers (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Record results in this SQLite database")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run identifier used with --db (default: random UUID)")
	cmd.Flags().StringVar(&rows, "rows", "", "Only score listings N, N:M or N: (1-based, inclusive)")

	return cmd
}

func saveRun(ctx context.Context, path, runID string, items []payload.Payload, results []forecast.Result) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	records := make([]store.Record, len(results))
	for i, r := range results {
		listing, err := json.Marshal(items[r.Index])
		if err != nil {
			return fmt.Errorf("encoding listing %d: %w", r.Index, err)
		}
		records[i] = store.Record{Listing: string(listing), Forecast: r.Forecast, Error: r.Error}
	}
	return s.SaveRun(ctx, runID, records)
}
