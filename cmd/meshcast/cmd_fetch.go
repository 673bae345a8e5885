package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/marketplace"
	"github.com/meshcast/meshcast/internal/preprocess"
	"github.com/meshcast/meshcast/internal/projectconfig"
)

// DefaultFetchLimit is the number of models fetch collects unless --limit
// says otherwise.
const DefaultFetchLimit = 500

type fetchReport struct {
	Output  string                `json:"output"`
	Summary preprocess.RawSummary `json:"summary"`
}

func newFetchCommand() *cobra.Command {
	var (
		output string
		limit  int
		search marketplace.SearchParams
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download raw model records from the marketplace API",
		Long: `Download model records from the marketplace API into a raw export that
preprocess turns into training rows.

The API token is read from ` + projectconfig.EnvMarketplaceToken + ` (a .env file in --dir is
loaded first). The API address comes from marketplace.base_url in
` + configFileHint + ` or ` + projectconfig.EnvMarketplaceURL + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mc := cfg.Marketplace
			if mc.Token == "" {
				return fmt.Errorf("marketplace token not set: export %s", projectconfig.EnvMarketplaceToken)
			}
			client, err := marketplace.NewClient(mc.BaseURL, mc.Token, marketplace.WithPause(mc.Pause))
			if err != nil {
				return err
			}
			if search.PageSize == 0 {
				search.PageSize = mc.PageSize
			}

			records, err := client.FetchModels(ctx, marketplace.BuildSearchParams(search), limit)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding records: %w", err)
			}
			raw, err := preprocess.ParseRaw(data, "fetched records")
			if err != nil {
				return err
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			slog.Info("Saved raw export", "path", output, "models", len(raw))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fetchReport{Output: output, Summary: preprocess.DescribeRaw(raw)})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "raw_models.json", "Where to write the raw export")
	cmd.Flags().IntVar(&limit, "limit", DefaultFetchLimit, "Maximum number of models to fetch")
	cmd.Flags().StringVar(&search.Sort, "sort", "likes", "Sort order: likes, views, recent or an API sort_by value")
	cmd.Flags().StringVarP(&search.Query, "query", "q", "", "Free-text search")
	cmd.Flags().StringSliceVar(&search.Categories, "category", nil, "Category slug (repeatable)")
	cmd.Flags().StringSliceVar(&search.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().BoolVar(&search.Downloadable, "downloadable", false, "Only downloadable models")
	cmd.Flags().BoolVar(&search.Animated, "animated", false, "Only animated models")
	cmd.Flags().IntVar(&search.Days, "days", 0, "Only models published in the last N days")
	cmd.Flags().IntVar(&search.PageSize, "page-size", 0, "Results per page (default from config, 24)")

	return cmd
}
