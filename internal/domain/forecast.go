package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Open-Meteo hourly variables requested for every location.
var HourlyVariables = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"weather_code",
	"wind_speed_10m",
	"precipitation",
}

// hourLayout is Open-Meteo's iso8601 hour format.
const hourLayout = "2006-01-02T15:04"

// ErrEmptyForecast reports a forecast without hourly timestamps.
var ErrEmptyForecast = errors.New("forecast has no hourly data")

// ForecastProvider fetches the hourly forecast for a location, keeping the
// first hours entries, with timestamps in the named timezone.
type ForecastProvider interface {
	Fetch(ctx context.Context, loc Location, hours int, timezone string) (Forecast, error)
}

// Hourly holds the per-hour series of an Open-Meteo response. A nil entry is a
// value the API did not provide.
type Hourly struct {
	Time             []string   `json:"time"`
	Temperature      []*float64 `json:"temperature_2m,omitempty"`
	RelativeHumidity []*float64 `json:"relative_humidity_2m,omitempty"`
	WeatherCode      []*float64 `json:"weather_code,omitempty"`
	WindSpeed        []*float64 `json:"wind_speed_10m,omitempty"`
	Precipitation    []*float64 `json:"precipitation,omitempty"`
}

// Forecast is an Open-Meteo forecast response stamped with the location it
// was collected for.
type Forecast struct {
	Latitude             float64           `json:"latitude"`
	Longitude            float64           `json:"longitude"`
	Timezone             string            `json:"timezone,omitempty"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation,omitempty"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds"`
	HourlyUnits          map[string]string `json:"hourly_units,omitempty"`
	Hourly               Hourly            `json:"hourly"`

	LocationID     string `json:"location_id,omitempty"`
	LocationName   string `json:"location_name,omitempty"`
	CollectionDate string `json:"collection_date,omitempty"`
	ForecastHours  int    `json:"forecast_hours,omitempty"`
}

// Stamp records the location and collection time on the forecast.
func (f *Forecast) Stamp(loc Location, collectedAt time.Time) {
	f.LocationID = loc.ID
	f.LocationName = loc.Name
	f.CollectionDate = collectedAt.Format(time.RFC3339)
	f.ForecastHours = len(f.Hourly.Time)
}

// Truncate keeps the first n hours of every hourly series.
func (f *Forecast) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	h := &f.Hourly
	h.Time = head(h.Time, n)
	h.Temperature = head(h.Temperature, n)
	h.RelativeHumidity = head(h.RelativeHumidity, n)
	h.WeatherCode = head(h.WeatherCode, n)
	h.WindSpeed = head(h.WindSpeed, n)
	h.Precipitation = head(h.Precipitation, n)
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Observation is one forecast hour. Missing values are NaN until Clean.
type Observation struct {
	Time          time.Time
	Temperature   float64
	Humidity      float64
	WeatherCode   float64
	WindSpeed     float64
	Precipitation float64
}

// Observations unpacks the hourly series into one Observation per timestamp.
// Hour timestamps are local to the forecast's UTC offset.
func (f Forecast) Observations() ([]Observation, error) {
	if len(f.Hourly.Time) == 0 {
		return nil, ErrEmptyForecast
	}
	zone := time.FixedZone(f.TimezoneAbbreviation, f.UTCOffsetSeconds)
	obs := make([]Observation, len(f.Hourly.Time))
	for i, ts := range f.Hourly.Time {
		t, err := parseHour(ts, zone)
		if err != nil {
			return nil, fmt.Errorf("parse forecast hour %d: %w", i, err)
		}
		obs[i] = Observation{
			Time:          t,
			Temperature:   valueAt(f.Hourly.Temperature, i),
			Humidity:      valueAt(f.Hourly.RelativeHumidity, i),
			WeatherCode:   valueAt(f.Hourly.WeatherCode, i),
			WindSpeed:     valueAt(f.Hourly.WindSpeed, i),
			Precipitation: valueAt(f.Hourly.Precipitation, i),
		}
	}
	return obs, nil
}

// parseHour accepts Open-Meteo's iso8601 hours ("2024-01-01T13:00") and full
// RFC 3339 timestamps.
func parseHour(s string, zone *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(hourLayout, s, zone); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func valueAt(s []*float64, i int) float64 {
	if i >= len(s) || s[i] == nil {
		return math.NaN()
	}
	return *s[i]
}
