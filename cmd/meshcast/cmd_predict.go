package main

import (
	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/reporting"
)

func newPredictCommand() *cobra.Command {
	var (
		format         string
		popularityOnly bool
	)

	cmd := &cobra.Command{
		Use:   "predict [payload | @file | -]",
		Short: "Forecast a listing's popularity and quality",
		Long: `Forecast how popular a listing will become and include its quality rating.

The first available strategy wins: the advanced model (when the listing has
text), the standard model, then the built-in heuristic.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}
			p, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := loadService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if popularityOnly {
				est, err := svc.Popularity(cmd.Context(), p)
				if err != nil {
					return err
				}
				return reporting.WriteEstimate(cmd.OutOrStdout(), f, est)
			}
			fc, err := svc.Forecast(cmd.Context(), p)
			if err != nil {
				return err
			}
			return reporting.WriteForecast(cmd.OutOrStdout(), f, fc)
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVar(&popularityOnly, "popularity-only", false, "Omit the quality rating")

	return cmd
}
