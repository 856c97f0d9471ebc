package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// ModelPath is the trained tree JSON the service classifies with.
	ModelPath string
	// ModelID is stamped on assessments. Defaults to the model file name.
	ModelID string

	Forecast Forecast
}

// Forecast configures Open-Meteo collection. riskctl reads it for flag defaults.
type Forecast struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
	Hours     int
	Timezone  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	forecast, err := LoadForecast()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-weather-forecasts"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "bikelane-risk-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "bikelane-risk"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		ModelPath:          os.Getenv("MODEL_PATH"),
		ModelID:            os.Getenv("MODEL_ID"),
		Forecast:           forecast,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}

	return cfg, nil
}

// LoadForecast reads the Open-Meteo settings.
func LoadForecast() (Forecast, error) {
	timeout, err := parsePositiveDuration("OPEN_METEO_TIMEOUT", "10s")
	if err != nil {
		return Forecast{}, err
	}
	cacheTTL, err := parsePositiveDuration("OPEN_METEO_CACHE_TTL", "30m")
	if err != nil {
		return Forecast{}, err
	}
	cacheSize, err := parsePositiveInt("OPEN_METEO_CACHE_SIZE", 256)
	if err != nil {
		return Forecast{}, err
	}
	hours, err := parsePositiveInt("FORECAST_HOURS", 24)
	if err != nil {
		return Forecast{}, err
	}

	return Forecast{
		BaseURL:   sharedcfg.EnvOrDefault("OPEN_METEO_URL", "https://api.open-meteo.com/v1/forecast"),
		Timeout:   timeout,
		CacheSize: cacheSize,
		CacheTTL:  cacheTTL,
		Hours:     hours,
		Timezone:  sharedcfg.EnvOrDefault("FORECAST_TIMEZONE", "America/Sao_Paulo"),
	}, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
