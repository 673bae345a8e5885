package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshcast/meshcast/internal/preprocess"
)

// DefaultOutlierThreshold is the number of standard deviations kept by
// preprocess unless --outliers says otherwise.
const DefaultOutlierThreshold = 3.0

type preprocessReport struct {
	Input   string             `json:"input"`
	Output  string             `json:"output"`
	Read    int                `json:"read"`
	Kept    int                `json:"kept"`
	Summary preprocess.Summary `json:"summary"`
}

func newPreprocessCommand() *cobra.Command {
	var (
		output    string
		threshold float64
		normalize bool
	)

	cmd := &cobra.Command{
		Use:   "preprocess <raw_models.json>",
		Short: "Turn raw marketplace records into training rows",
		Long: `Convert raw marketplace model records into feature rows with engagement
and popularity labels, suitable for training the popularity models.

Rows whose engagement lies more than --outliers standard deviations from the
mean are dropped; 0 keeps every row. --normalize rescales face count, vertex
count and author followers of the kept rows to 0-100.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := preprocess.LoadRaw(args[0])
			if err != nil {
				return err
			}

			rows := preprocess.New(time.Now).ProcessModels(raw)
			kept := rows
			if threshold > 0 {
				kept = preprocess.FilterOutliers(rows, threshold)
			}
			if normalize {
				kept = preprocess.Normalize(kept)
			}
			if err := preprocess.Save(output, kept); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(preprocessReport{
				Input:   args[0],
				Output:  output,
				Read:    len(raw),
				Kept:    len(kept),
				Summary: preprocess.Summarize(kept),
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "training_data.json", "Where to write the training rows")
	cmd.Flags().Float64Var(&threshold, "outliers", DefaultOutlierThreshold, "Outlier threshold in standard deviations")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Min-max scale counts to 0-100")

	return cmd
}
