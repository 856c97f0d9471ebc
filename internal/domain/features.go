package domain

import (
	"github.com/couchcryptid/bikelane-risk/internal/dataset"
)

// Model column names.
const (
	FeatureWeatherCode   = "weather_code"
	FeatureWindSpeed     = "wind_speed_10m"
	FeaturePrecipitation = "precipitation"
	FeatureHeatIndex     = "sensacao_termica"
	FeatureRain3h        = "chuva_acumulada_3h"
	FeatureMaxWind3h     = "rajada_maxima_3h"
)

// FeatureNames lists the model columns in training order.
func FeatureNames() []string {
	return []string{
		FeatureWeatherCode,
		FeatureWindSpeed,
		FeaturePrecipitation,
		FeatureHeatIndex,
		FeatureRain3h,
		FeatureMaxWind3h,
	}
}

// LabelColumns are the accepted header names of the risk label column.
func LabelColumns() []string { return []string{"rótulo", "rotulo"} }

// Risk classes.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
	RiskSafe   = "Safe"
	RiskUnsafe = "Unsafe"
)

// ThreeClass maps training-file labels to Low, Medium and High.
var ThreeClass = &dataset.LabelMapping{
	Name: "three-class",
	Values: map[string]string{
		"Baixo": RiskLow, "Médio": RiskMedium, "Medio": RiskMedium, "Alto": RiskHigh,
		RiskLow: RiskLow, RiskMedium: RiskMedium, RiskHigh: RiskHigh,
	},
}

// Binary maps training-file labels to Safe (low risk) and Unsafe.
var Binary = &dataset.LabelMapping{
	Name: "binary",
	Values: map[string]string{
		"Baixo": RiskSafe, "Médio": RiskUnsafe, "Medio": RiskUnsafe, "Alto": RiskUnsafe,
		RiskLow: RiskSafe, RiskMedium: RiskUnsafe, RiskHigh: RiskUnsafe,
		RiskSafe: RiskSafe, RiskUnsafe: RiskUnsafe,
	},
}

// LabelScheme returns the mapping registered under name.
func LabelScheme(name string) (*dataset.LabelMapping, bool) {
	switch name {
	case ThreeClass.Name:
		return ThreeClass, true
	case Binary.Name:
		return Binary, true
	default:
		return nil, false
	}
}

// Features are the model inputs for one hour.
type Features struct {
	WeatherCode   float64 `json:"weather_code"`
	WindSpeed     float64 `json:"wind_speed_10m"`
	Precipitation float64 `json:"precipitation"`
	HeatIndex     float64 `json:"sensacao_termica"`
	Rain3h        float64 `json:"chuva_acumulada_3h"`
	MaxWind3h     float64 `json:"rajada_maxima_3h"`
}

// Map keys the features by model column name.
func (f Features) Map() map[string]float64 {
	return map[string]float64{
		FeatureWeatherCode:   f.WeatherCode,
		FeatureWindSpeed:     f.WindSpeed,
		FeaturePrecipitation: f.Precipitation,
		FeatureHeatIndex:     f.HeatIndex,
		FeatureRain3h:        f.Rain3h,
		FeatureMaxWind3h:     f.MaxWind3h,
	}
}

// Row returns the features in FeatureNames order.
func (f Features) Row() []float64 {
	return []float64{f.WeatherCode, f.WindSpeed, f.Precipitation, f.HeatIndex, f.Rain3h, f.MaxWind3h}
}
