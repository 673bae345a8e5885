package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newModelInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model-info",
		Short: "Show training metrics and the active prediction strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := loadService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(svc.ModelInfo())
		},
	}
}
