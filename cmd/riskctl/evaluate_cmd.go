package main

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/bikelane-risk/internal/evaluate"
	"github.com/couchcryptid/bikelane-risk/internal/tree"
	"github.com/spf13/cobra"
)

type evaluateCmdConfig struct {
	*rootCmdConfig
	labels     labelFlags
	modelInput string
	dataInput  string
	asJSON     bool
}

func evaluateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &evaluateCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a model against labelled data",
		Long:  `Classify every row of a labelled CSV file with a saved model and report accuracy, per-class metrics and the confusion matrix.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mapping, err := config.labels.mapping()
			if err != nil {
				return err
			}
			t, err := tree.Load(config.modelInput)
			if err != nil {
				return err
			}
			d, err := readDataset(config.dataInput, t.Features, mapping, false)
			if err != nil {
				return err
			}
			pred, err := t.PredictConcurrent(cmd.Context(), d.Rows, 0)
			if err != nil {
				return err
			}
			report, err := evaluate.Evaluate(d.Labels, pred, reportClasses(t, d.Labels))
			if err != nil {
				return err
			}
			config.logger().Info("model evaluated", "samples", d.Len(), "accuracy", report.Accuracy)

			if config.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			renderDistribution(cmd.OutOrStdout(), "Labels", d.Labels)
			fmt.Fprintln(cmd.OutOrStdout())
			return report.Render(cmd.OutOrStdout())
		},
	}
	config.labels.register(cmd)
	cmd.Flags().StringVarP(&config.modelInput, "model", "m", "model.json", "model file")
	cmd.Flags().StringVarP(&config.dataInput, "data", "d", "", "labelled CSV file")
	cmd.Flags().BoolVar(&config.asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
