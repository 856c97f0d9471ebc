package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/couchcryptid/bikelane-risk/internal/adapter/kafka"
	"github.com/couchcryptid/bikelane-risk/internal/adapter/openmeteo"
	"github.com/couchcryptid/bikelane-risk/internal/config"
	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/observability"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const metadataFile = "metadata.json"

type fetchCmdConfig struct {
	*rootCmdConfig
	stationsPath string
	outputDir    string
	hours        int
	timezone     string
	baseURL      string
	timeout      time.Duration
	concurrency  int
	every        time.Duration
	cacheTTL     time.Duration
	cacheSize    int
	publish      bool
	brokers      string
	topic        string
}

func fetchCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &fetchCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch hourly forecasts for every station",
		Long: `Fetch the Open-Meteo hourly forecast of every station in the stations file,
save one <id>_raw.json per station plus metadata.json, and optionally publish the
forecasts to the service's source topic. Unset flags fall back to the OPEN_METEO_*
and FORECAST_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.applyEnv(cmd); err != nil {
				return err
			}
			return cfg.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&cfg.stationsPath, "stations", "stations.yaml", "YAML or JSON file listing the stations")
	cmd.Flags().StringVarP(&cfg.outputDir, "output-dir", "o", filepath.Join("data", "raw"), "directory for raw forecasts and metadata")
	cmd.Flags().IntVar(&cfg.hours, "hours", 0, "forecast hours to keep per station")
	cmd.Flags().StringVar(&cfg.timezone, "timezone", "", "timezone of the hourly timestamps")
	cmd.Flags().StringVar(&cfg.baseURL, "base-url", "", "Open-Meteo forecast endpoint")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 0, "per-request timeout")
	cmd.Flags().IntVar(&cfg.concurrency, "concurrency", 4, "stations fetched in parallel")
	cmd.Flags().DurationVar(&cfg.every, "every", 0, "repeat the collection at this interval until interrupted")
	cmd.Flags().DurationVar(&cfg.cacheTTL, "cache-ttl", 0, "reuse forecasts younger than this when repeating")
	cmd.Flags().BoolVar(&cfg.publish, "publish", false, "publish forecasts to Kafka")
	cmd.Flags().StringVar(&cfg.brokers, "brokers", sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092"), "comma-separated Kafka brokers")
	cmd.Flags().StringVar(&cfg.topic, "topic", sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-weather-forecasts"), "topic to publish forecasts to")
	return cmd
}

// applyEnv fills the flags left unset from the forecast environment settings.
func (c *fetchCmdConfig) applyEnv(cmd *cobra.Command) error {
	env, err := config.LoadForecast()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("hours") {
		c.hours = env.Hours
	}
	if !flags.Changed("timezone") {
		c.timezone = env.Timezone
	}
	if !flags.Changed("base-url") {
		c.baseURL = env.BaseURL
	}
	if !flags.Changed("timeout") {
		c.timeout = env.Timeout
	}
	if !flags.Changed("cache-ttl") {
		c.cacheTTL = env.CacheTTL
	}
	c.cacheSize = env.CacheSize
	if c.hours <= 0 {
		return fmt.Errorf("--hours must be positive, got %d", c.hours)
	}
	if c.concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive, got %d", c.concurrency)
	}
	return nil
}

func (c *fetchCmdConfig) run(ctx context.Context) error {
	logger := c.logger()
	stations, err := readStations(c.stationsPath)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	var provider domain.ForecastProvider = openmeteo.NewClient(c.baseURL, c.timeout, metrics, logger)
	if c.every > 0 {
		provider = openmeteo.NewCachedClient(provider, max(c.cacheSize, len(stations)), c.cacheTTL, metrics)
	}

	f := &fetcher{
		provider:    provider,
		hours:       c.hours,
		timezone:    c.timezone,
		outputDir:   c.outputDir,
		concurrency: c.concurrency,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
	}
	if c.publish {
		w := kafka.NewTopicWriter(sharedcfg.ParseBrokers(c.brokers), c.topic, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		f.publisher = w
	}

	if c.every <= 0 {
		_, err := f.collect(ctx, stations)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ticker := time.NewTicker(c.every)
	defer ticker.Stop()
	for {
		if _, err := f.collect(ctx, stations); err != nil {
			logger.Error("collection failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// publisher sends serialized forecasts downstream; kafka.Writer implements it.
type publisher interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

type fetcher struct {
	provider    domain.ForecastProvider
	publisher   publisher
	hours       int
	timezone    string
	outputDir   string
	concurrency int
	clock       clockwork.Clock
	logger      *slog.Logger
}

type metadata struct {
	CollectionDate string           `json:"collection_date"`
	ForecastHours  int              `json:"forecast_hours"`
	Timezone       string           `json:"timezone"`
	Variables      []string         `json:"variables"`
	Locations      []stationOutcome `json:"locations"`
}

type stationOutcome struct {
	domain.Location
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// collect fetches every station, writes the successful forecasts and the
// collection metadata, and publishes them when a publisher is set. A failing
// station does not stop the others; collect only fails outright when no
// station succeeded or the outputs cannot be written.
func (f *fetcher) collect(ctx context.Context, stations []domain.Location) (*metadata, error) {
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	forecasts := make([]*domain.Forecast, len(stations))
	outcomes := make([]stationOutcome, len(stations))
	var (
		mu       sync.Mutex
		fetchErr error
	)

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, loc := range stations {
		g.Go(func() error {
			outcomes[i].Location = loc
			fc, err := f.provider.Fetch(ctx, loc, f.hours, f.timezone)
			if err != nil {
				outcomes[i].Error = err.Error()
				mu.Lock()
				fetchErr = multierr.Append(fetchErr, fmt.Errorf("station %s: %w", loc.ID, err))
				mu.Unlock()
				return nil
			}
			name := loc.ID + "_raw.json"
			if err := writeJSON(filepath.Join(f.outputDir, name), fc); err != nil {
				return err
			}
			outcomes[i].File = name
			forecasts[i] = &fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meta := &metadata{
		CollectionDate: f.clock.Now().UTC().Format(time.RFC3339),
		ForecastHours:  f.hours,
		Timezone:       f.timezone,
		Variables:      domain.HourlyVariables,
		Locations:      outcomes,
	}
	if err := writeJSON(filepath.Join(f.outputDir, metadataFile), meta); err != nil {
		return nil, err
	}

	var events []domain.OutputEvent
	for _, fc := range forecasts {
		if fc == nil {
			continue
		}
		event, err := domain.SerializeForecast(*fc)
		if err != nil {
			return meta, err
		}
		events = append(events, event)
	}

	for _, err := range multierr.Errors(fetchErr) {
		f.logger.Warn("station skipped", "error", err)
	}
	if len(events) == 0 {
		return meta, fmt.Errorf("no station could be fetched: %w", fetchErr)
	}
	f.logger.Info("forecasts collected",
		"stations", len(events),
		"failed", len(stations)-len(events),
		"output_dir", f.outputDir,
	)

	if f.publisher != nil {
		if err := f.publisher.LoadBatch(ctx, events); err != nil {
			return meta, fmt.Errorf("publish forecasts: %w", err)
		}
		f.logger.Info("forecasts published", "count", len(events))
	}
	return meta, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
