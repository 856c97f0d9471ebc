package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/bikelane-risk/internal/dataset"
	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/evaluate"
	"github.com/couchcryptid/bikelane-risk/internal/tree"
	"github.com/spf13/cobra"
)

type trainCmdConfig struct {
	*rootCmdConfig
	labels       labelFlags
	dataInput    string
	output       string
	features     string
	testFraction float64
	seed         int64
	tree         tree.Config
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &trainCmdConfig{rootCmdConfig: rootConfig, tree: tree.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a decision tree on labelled hours",
		Long: `Train a decision tree on a labelled CSV file. The data is split into train and
test sets per class, the tree is grown on the train set and evaluated on the test
set, and the model is written as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mapping, err := config.labels.mapping()
			if err != nil {
				return err
			}
			d, err := readDataset(config.dataInput, splitList(config.features), mapping, false)
			if err != nil {
				return err
			}
			t, err := train(cmd.OutOrStdout(), d, config.tree, config.testFraction, config.seed, config.logger())
			if err != nil {
				return err
			}
			if err := tree.Save(config.output, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nModel written to %s\n", config.output)
			return nil
		},
	}
	config.labels.register(cmd)
	cmd.Flags().StringVarP(&config.dataInput, "data", "d", "", "labelled CSV file")
	cmd.Flags().StringVarP(&config.output, "output", "o", "model.json", "model file to write")
	cmd.Flags().StringVar(&config.features, "features", strings.Join(domain.FeatureNames(), ","), "comma-separated feature columns")
	cmd.Flags().Float64Var(&config.testFraction, "test-fraction", dataset.DefaultTestFraction, "share of each class held out for testing")
	cmd.Flags().Int64Var(&config.seed, "seed", dataset.DefaultSeed, "seed of the train/test shuffle")
	cmd.Flags().IntVar(&config.tree.MaxDepth, "max-depth", tree.DefaultMaxDepth, "maximum tree depth")
	cmd.Flags().IntVar(&config.tree.MinLeafSamples, "min-leaf", tree.DefaultMinLeafSamples, "minimum samples to split a node")
	cmd.Flags().IntVar(&config.tree.MaxSplitCandidates, "max-candidates", tree.DefaultMaxSplitCandidates, "thresholds tried per feature")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// train splits d, grows a tree on the train part and reports on the test part.
func train(w io.Writer, d *dataset.Dataset, cfg tree.Config, testFraction float64, seed int64, logger *slog.Logger) (*tree.Tree, error) {
	renderDistribution(w, "Dataset", d.Labels)

	trainSet, testSet, err := dataset.StratifiedSplit(d, testFraction, seed)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset split", "train", trainSet.Len(), "test", testSet.Len())
	renderDistribution(w, "Train", trainSet.Labels)
	renderDistribution(w, "Test", testSet.Labels)

	t, err := tree.Build(trainSet, cfg, tree.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Info("tree grown", "depth", t.Depth(), "leaves", t.Leaves())

	fmt.Fprintf(w, "\nDecision tree (depth %d, %d leaves)\n", t.Depth(), t.Leaves())
	if err := t.Format(w); err != nil {
		return nil, err
	}

	report, err := evaluate.Evaluate(testSet.Labels, t.Predict(testSet.Rows), reportClasses(t, testSet.Labels))
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w, "\nTest set evaluation")
	if err := report.Render(w); err != nil {
		return nil, err
	}
	return t, nil
}
