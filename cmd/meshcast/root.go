package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meshcast",
		Short: "Meshcast - quality and popularity forecasts for 3D model listings",
		Long: `Meshcast rates the quality of 3D model marketplace listings and forecasts
how popular they will become.

Listings are JSON objects passed as an argument or on stdin. Trained
popularity models are loaded from the configured models directory or Azure
Blob container; without them a heuristic estimate is used.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "Directory to search for "+configFileHint)
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRateCommand())
	cmd.AddCommand(newPredictCommand())
	cmd.AddCommand(newBatchCommand())
	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newPreprocessCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newWizardCommand())
	cmd.AddCommand(newModelInfoCommand())

	return cmd
}

func execute(args []string) error {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
