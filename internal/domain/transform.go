package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	kelvinOffset = 273.15
	// Mean temperatures above this can only be Kelvin.
	kelvinMeanThreshold = 200
	rollingWindow       = 3
)

// Classifier predicts a risk class from named features.
type Classifier interface {
	PredictNamed(sample map[string]float64) (string, error)
}

// ParseForecast deserializes a RawEvent's value into a Forecast.
func ParseForecast(raw RawEvent) (Forecast, error) {
	var f Forecast
	if err := json.Unmarshal(raw.Value, &f); err != nil {
		return Forecast{}, fmt.Errorf("parse forecast: %w", err)
	}
	if len(f.Hourly.Time) == 0 {
		return Forecast{}, ErrEmptyForecast
	}
	if f.LocationID == "" {
		f.LocationID = string(raw.Key)
	}
	return f, nil
}

// Clean fills gaps and normalizes units in place and returns obs. Each series
// is forward filled, leading gaps become 0, Kelvin temperatures are converted
// to Celsius and every value is rounded to two decimals.
func Clean(obs []Observation) []Observation {
	fields := []func(*Observation) *float64{
		func(o *Observation) *float64 { return &o.Temperature },
		func(o *Observation) *float64 { return &o.Humidity },
		func(o *Observation) *float64 { return &o.WeatherCode },
		func(o *Observation) *float64 { return &o.WindSpeed },
		func(o *Observation) *float64 { return &o.Precipitation },
	}
	for _, field := range fields {
		last := 0.0
		for i := range obs {
			v := field(&obs[i])
			if math.IsNaN(*v) || math.IsInf(*v, 0) {
				*v = last
				continue
			}
			last = *v
		}
	}

	if len(obs) > 0 {
		temps := make([]float64, len(obs))
		for i, o := range obs {
			temps[i] = o.Temperature
		}
		if stat.Mean(temps, nil) > kelvinMeanThreshold {
			for i := range obs {
				obs[i].Temperature -= kelvinOffset
			}
		}
	}

	for i := range obs {
		for _, field := range fields {
			v := field(&obs[i])
			*v = round2(*v)
		}
	}
	return obs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HeatIndex is a simplified apparent temperature in °C for air temperature t
// (°C) and relative humidity rh (%).
func HeatIndex(t, rh float64) float64 {
	return t - 0.55*(1-0.01*rh)*(t-14.5)
}

// Hour is a cleaned observation with its derived model features.
type Hour struct {
	Observation
	Features Features
}

// Engineer derives the model features for cleaned observations. Rolling
// windows cover the current hour and the two before it.
func Engineer(obs []Observation) []Hour {
	hours := make([]Hour, len(obs))
	for i, o := range obs {
		start := max(0, i-rollingWindow+1)
		rain, gust := 0.0, math.Inf(-1)
		for _, w := range obs[start : i+1] {
			rain += w.Precipitation
			gust = math.Max(gust, w.WindSpeed)
		}
		hours[i] = Hour{
			Observation: o,
			Features: Features{
				WeatherCode:   o.WeatherCode,
				WindSpeed:     o.WindSpeed,
				Precipitation: o.Precipitation,
				HeatIndex:     HeatIndex(o.Temperature, o.Humidity),
				Rain3h:        rain,
				MaxWind3h:     gust,
			},
		}
	}
	return hours
}

// Prepare cleans a forecast's observations and derives their features.
func Prepare(f Forecast) ([]Hour, error) {
	obs, err := f.Observations()
	if err != nil {
		return nil, err
	}
	return Engineer(Clean(obs)), nil
}

// Assess classifies every forecast hour.
func Assess(f Forecast, c Classifier, modelID string) ([]RiskAssessment, error) {
	hours, err := Prepare(f)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	out := make([]RiskAssessment, 0, len(hours))
	for _, h := range hours {
		level, err := c.PredictNamed(h.Features.Map())
		if err != nil {
			return nil, fmt.Errorf("classify %s at %s: %w", f.LocationID, h.Time.Format(time.RFC3339), err)
		}
		out = append(out, RiskAssessment{
			ID:           generateID(f.LocationID, h.Time, modelID),
			LocationID:   f.LocationID,
			LocationName: f.LocationName,
			Latitude:     f.Latitude,
			Longitude:    f.Longitude,
			Time:         h.Time,
			Temperature:  h.Temperature,
			Humidity:     h.Humidity,
			Features:     h.Features,
			RiskLevel:    level,
			ModelID:      modelID,
			AssessedAt:   now,
		})
	}
	return out, nil
}

// generateID produces a deterministic ID from the location, hour and model.
// Reassessing the same forecast with the same model yields the same ID.
func generateID(locationID string, hour time.Time, modelID string) string {
	input := fmt.Sprintf("%s|%s|%s", locationID, hour.UTC().Format(time.RFC3339), modelID)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if locationID == "" {
		return short
	}
	return locationID + "-" + short
}
