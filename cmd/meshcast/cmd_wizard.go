package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/wizard"
)

func newWizardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Describe a listing interactively and print its JSON payload",
		Long: `Ask for a listing's description, tags, geometry, use case, author and
technical features, then print the JSON payload accepted by rate and predict.

Prompts are written to stderr so the payload can be piped:

  meshcast wizard | meshcast predict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tables, err := cfg.Tables()
			if err != nil {
				return err
			}

			p, err := wizard.RunListingWizard(cmd.InOrStdin(), cmd.ErrOrStderr(), tables)
			if err != nil {
				return err
			}
			out, err := wizard.GeneratePayloadJSON(p)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}
