package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"

	forecastBody = `{
		"latitude": -23.5,
		"longitude": -46.625,
		"timezone": "America/Sao_Paulo",
		"timezone_abbreviation": "-03",
		"utc_offset_seconds": -10800,
		"hourly_units": {"time": "iso8601", "temperature_2m": "°C"},
		"hourly": {
			"time": ["2024-03-10T00:00", "2024-03-10T01:00", "2024-03-10T02:00"],
			"temperature_2m": [21.4, 21.0, null],
			"relative_humidity_2m": [88, 90, 91],
			"weather_code": [3, 61, 61],
			"wind_speed_10m": [7.2, 9.8, 11.5],
			"precipitation": [0, 0.4, 1.2]
		}
	}`
)

var (
	collectedAt = time.Date(2024, 3, 9, 21, 0, 0, 0, time.UTC)
	paulista    = domain.Location{ID: "ciclovia-paulista", Name: "Ciclovia Paulista", Latitude: -23.5613, Longitude: -46.6565}
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient:      &http.Client{Timeout: 5 * time.Second},
		baseURL:         baseURL,
		maxRetries:      2,
		initialInterval: time.Millisecond,
		clock:           clockwork.NewFakeClockAt(collectedAt),
		metrics:         observability.NewMetricsForTesting(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "-23.5613", q.Get("latitude"))
		assert.Equal(t, "-46.6565", q.Get("longitude"))
		assert.Equal(t, "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m,precipitation", q.Get("hourly"))
		assert.Equal(t, "America/Sao_Paulo", q.Get("timezone"))
		assert.Equal(t, "2", q.Get("forecast_hours"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	f, err := c.Fetch(context.Background(), paulista, 2, "America/Sao_Paulo")
	require.NoError(t, err)

	assert.Equal(t, "ciclovia-paulista", f.LocationID)
	assert.Equal(t, "Ciclovia Paulista", f.LocationName)
	assert.Equal(t, "2024-03-09T21:00:00Z", f.CollectionDate)
	assert.Equal(t, 2, f.ForecastHours)
	assert.Len(t, f.Hourly.Time, 2, "truncated to the requested hours")
	assert.Len(t, f.Hourly.Temperature, 2)
	assert.Equal(t, -10800, f.UTCOffsetSeconds)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.ForecastRequests.WithLabelValues("success")))
}

func TestClient_Fetch_InvalidLocation(t *testing.T) {
	c := testClient("http://127.0.0.1:0")
	_, err := c.Fetch(context.Background(), domain.Location{ID: "x", Latitude: 123}, 24, "")
	require.ErrorIs(t, err, domain.ErrInvalidLocation)
}

func TestClient_Fetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	f, err := c.Fetch(context.Background(), paulista, 24, "")
	require.NoError(t, err)
	assert.Len(t, f.Hourly.Time, 3)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.ForecastRequests.WithLabelValues("retry")))
}

func TestClient_Fetch_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), paulista, 24, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.ForecastRequests.WithLabelValues("error")))
}

func TestClient_Fetch_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Cannot initialize WeatherVariable from invalid String value"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), paulista, 24, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "Cannot initialize WeatherVariable")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Fetch_EmptyHourly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": 1, "longitude": 2, "hourly": {"time": []}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), paulista, 24, "")
	require.ErrorIs(t, err, domain.ErrEmptyForecast)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond
	c.maxRetries = 0

	_, err := c.Fetch(context.Background(), paulista, 24, "")
	require.Error(t, err)
}

func TestErrorReason(t *testing.T) {
	assert.Equal(t, "bad latitude", errorReason([]byte(`{"error":true,"reason":"bad latitude"}`)))
	assert.Equal(t, "upstream down", errorReason([]byte("upstream down\n")))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, uint64(defaultMaxRetries), c.maxRetries)
}
