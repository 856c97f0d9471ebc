package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const defaultMaxRetries = 3

// Client implements domain.ForecastProvider using the Open-Meteo forecast API.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	maxRetries      uint64
	initialInterval time.Duration
	clock           clockwork.Clock
	metrics         *observability.Metrics
	logger          *slog.Logger
}

// NewClient creates an Open-Meteo client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:         baseURL,
		maxRetries:      defaultMaxRetries,
		initialInterval: 500 * time.Millisecond,
		clock:           clockwork.NewRealClock(),
		metrics:         metrics,
		logger:          logger,
	}
}

// Fetch retrieves the hourly forecast for loc, keeps the first hours entries
// and stamps it with the location and collection time. Network errors, 429 and
// 5xx responses are retried with exponential backoff.
func (c *Client) Fetch(ctx context.Context, loc domain.Location, hours int, timezone string) (domain.Forecast, error) {
	if err := loc.Validate(); err != nil {
		return domain.Forecast{}, err
	}

	params := url.Values{
		"latitude":  {strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
		"hourly":    {strings.Join(domain.HourlyVariables, ",")},
	}
	if timezone != "" {
		params.Set("timezone", timezone)
	}
	if hours > 0 {
		params.Set("forecast_hours", strconv.Itoa(hours))
	}
	fullURL := c.baseURL + "?" + params.Encode()

	var forecast domain.Forecast
	op := func() error {
		f, err := c.doRequest(ctx, fullURL)
		if err != nil {
			var perm *backoff.PermanentError
			if !errors.As(err, &perm) {
				c.metrics.ForecastRequests.WithLabelValues("retry").Inc()
			}
			return err
		}
		forecast = f
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("forecast request failed, retrying", "location_id", loc.ID, "wait", wait, "error", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	if err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx), notify); err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.Forecast{}, fmt.Errorf("fetch forecast for %s: %w", loc.ID, err)
	}
	c.metrics.ForecastRequests.WithLabelValues("success").Inc()

	if hours > 0 {
		forecast.Truncate(hours)
	}
	forecast.Stamp(loc, c.clock.Now())
	c.logger.Debug("forecast fetched", "location_id", loc.ID, "hours", forecast.ForecastHours)
	return forecast, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Forecast, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Forecast{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ForecastAPIDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, errorReason(body))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return domain.Forecast{}, apiErr
		}
		return domain.Forecast{}, backoff.Permanent(apiErr)
	}

	var f domain.Forecast
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return domain.Forecast{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if len(f.Hourly.Time) == 0 {
		return domain.Forecast{}, backoff.Permanent(domain.ErrEmptyForecast)
	}
	return f, nil
}

// errorReason extracts the message of an Open-Meteo error body
// ({"error": true, "reason": "..."}), falling back to the raw body.
func errorReason(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Reason != "" {
		return e.Reason
	}
	return strings.TrimSpace(string(body))
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
