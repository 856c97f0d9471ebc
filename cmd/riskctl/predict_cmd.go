package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/bikelane-risk/internal/dataset"
	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/tree"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	modelInput  string
	dataInput   string
	output      string
	workers     int
	fillMissing bool
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify the rows of a feature CSV file",
		Long: `Classify every row of a CSV file holding the model's feature columns, such as
a file written by preprocess, and print the predicted risk per row.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := tree.Load(config.modelInput)
			if err != nil {
				return err
			}
			d, err := readDataset(config.dataInput, t.Features, nil, config.fillMissing)
			if err != nil {
				return err
			}
			d, err = predict(cmd.Context(), t, d, config.workers)
			if err != nil {
				return err
			}
			config.logger().Info("rows classified", "rows", d.Len())

			if config.output == "" {
				renderPredictions(cmd.OutOrStdout(), d)
				return nil
			}
			f, err := os.Create(config.output)
			if err != nil {
				return err
			}
			if err := dataset.WriteCSV(f, d, domain.LabelColumns()[0]); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&config.modelInput, "model", "m", "model.json", "model file")
	cmd.Flags().StringVarP(&config.dataInput, "data", "d", "", "CSV file with the feature columns")
	cmd.Flags().StringVarP(&config.output, "output", "o", "", "write the rows with a predicted label column to this CSV instead of printing")
	cmd.Flags().IntVar(&config.workers, "workers", 0, "prediction goroutines (0 uses GOMAXPROCS)")
	cmd.Flags().BoolVar(&config.fillMissing, "fill-missing", false, "read absent feature columns as 0")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// predict returns d with its labels replaced by the model's predictions.
func predict(ctx context.Context, t *tree.Tree, d *dataset.Dataset, workers int) (*dataset.Dataset, error) {
	labels, err := t.PredictConcurrent(ctx, d.Rows, workers)
	if err != nil {
		return nil, err
	}
	return dataset.New(d.Features, d.Rows, labels)
}

func renderPredictions(w io.Writer, d *dataset.Dataset) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := table.Row{"#"}
	for _, f := range d.Features {
		header = append(header, f)
	}
	tw.AppendHeader(append(header, "risk"))
	for i, row := range d.Rows {
		r := table.Row{i + 1}
		for _, v := range row {
			r = append(r, strconv.FormatFloat(v, 'f', -1, 64))
		}
		tw.AppendRow(append(r, d.Labels[i]))
	}
	tw.Render()

	fmt.Fprintf(w, "%d rows\n", d.Len())
	classes, counts := dataset.CountLabels(d.Labels)
	for _, c := range classes {
		fmt.Fprintf(w, "%s: %d\n", c, counts[c])
	}
}
