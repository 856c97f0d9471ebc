package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/spf13/cobra"
)

type preprocessCmdConfig struct {
	*rootCmdConfig
	inputDir  string
	outputDir string
}

func preprocessCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &preprocessCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "preprocess [raw forecast files...]",
		Short: "Clean raw forecasts and derive hourly features",
		Long: `Turn raw forecast JSON files into processed CSV files with the model features:
gaps are forward filled, Kelvin is converted to Celsius, and heat index, 3-hour
rainfall and 3-hour peak wind are derived. Without arguments every *_raw.json
file of --input-dir is processed.`,
		RunE: func(_ *cobra.Command, args []string) error {
			inputs := args
			if len(inputs) == 0 {
				var err error
				inputs, err = filepath.Glob(filepath.Join(config.inputDir, "*_raw.json"))
				if err != nil {
					return err
				}
			}
			if len(inputs) == 0 {
				return errors.New("no raw forecast files to process")
			}
			_, err := preprocessFiles(inputs, config.outputDir, config.logger())
			return err
		},
	}
	cmd.Flags().StringVarP(&config.inputDir, "input-dir", "i", filepath.Join("data", "raw"), "directory holding raw forecasts")
	cmd.Flags().StringVarP(&config.outputDir, "output-dir", "o", filepath.Join("data", "processed"), "directory for processed CSV files")
	return cmd
}

// preprocessFiles writes one <name>_processed.csv per raw forecast and returns
// the written paths.
func preprocessFiles(inputs []string, outputDir string, logger *slog.Logger) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	written := make([]string, 0, len(inputs))
	for _, in := range inputs {
		out := filepath.Join(outputDir, processedName(in))
		n, err := preprocessFile(in, out)
		if err != nil {
			return written, fmt.Errorf("preprocess %s: %w", in, err)
		}
		logger.Info("forecast processed", "input", in, "output", out, "hours", n)
		written = append(written, out)
	}
	return written, nil
}

func preprocessFile(in, out string) (int, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return 0, err
	}
	var f domain.Forecast
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("decode forecast: %w", err)
	}
	hours, err := domain.Prepare(f)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	if err := domain.WriteProcessedCSV(file, hours); err != nil {
		_ = file.Close()
		return 0, err
	}
	return len(hours), file.Close()
}

// processedName maps "sp-centro_raw.json" to "sp-centro_processed.csv".
func processedName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.TrimSuffix(base, "_raw")
	return base + "_processed.csv"
}
