package main

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/bikelane-risk/internal/observability"
	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	logLevel  string
	logFormat string
}

func (c *rootCmdConfig) logger() *slog.Logger {
	return observability.NewLoggerTo(os.Stderr, c.logLevel, c.logFormat)
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "riskctl",
		Short: "riskctl trains and runs the bike lane weather risk classifier",
		Long: `Collect Open-Meteo forecasts for bike lane stations, engineer hourly features,
train a decision tree on labelled hours, evaluate it and classify new data.`,
		SilenceUsage: true,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().StringVar(&config.logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&config.logFormat, "log-format", "text", "text or json")
	rootCmd.AddCommand(
		fetchCmd(config),
		preprocessCmd(config),
		trainCmd(config),
		evaluateCmd(config),
		predictCmd(config),
	)
	return rootCmd
}
