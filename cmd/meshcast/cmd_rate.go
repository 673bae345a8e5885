package main

import (
	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/reporting"
)

func newRateCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rate [payload | @file | -]",
		Short: "Rate the quality of a listing",
		Long: `Rate a listing's description, tags, polygon count, author account and
technical features, and suggest improvements.

The listing is a JSON object given as an argument, read from a file with
@path, or read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reporting.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rater, err := newRater(cfg)
			if err != nil {
				return err
			}
			p, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			return reporting.WriteQuality(cmd.OutOrStdout(), f, rater.CalculateQualityScore(p.Listing()))
		},
	}
	addFormatFlag(cmd, &format)

	return cmd
}
