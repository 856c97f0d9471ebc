// Package domain models hourly weather forecasts and the bicycle-lane risk
// assessments derived from them.
//
// # Data Source
//
// Forecasts come from the Open-Meteo forecast API
// (https://api.open-meteo.com/v1/forecast). A monitored location is queried for
// the hourly variables temperature_2m, relative_humidity_2m, weather_code,
// wind_speed_10m and precipitation. The collector keeps the first
// FORECAST_HOURS entries (24 by default), stamps the payload with the location
// id and name, the collection time and the hour count, and publishes it as JSON
// to the Kafka source topic. Hourly arrays may contain nulls.
//
// # Cleaning
//
// Missing hourly values are forward filled and any leading gap becomes 0.
// Temperatures are converted from Kelvin when their mean exceeds 200 (no
// inhabited place averages 200 °C). Every value is rounded to two decimals.
//
// # Derived Features
//
//	sensacao_termica    T - 0.55·(1 - 0.01·RH)·(T - 14.5), a simplified heat index
//	chuva_acumulada_3h  precipitation summed over the current and two previous hours
//	rajada_maxima_3h    maximum wind speed over the current and two previous hours
//
// Windows at the start of a forecast use the hours available.
//
// # Model Columns
//
// Classifiers consume six columns, named as in the labelled training file:
// weather_code, wind_speed_10m, precipitation, sensacao_termica,
// chuva_acumulada_3h and rajada_maxima_3h. See [FeatureNames].
//
// # Risk Levels
//
// Training files label rows Baixo, Médio (or Medio) and Alto. [ThreeClass] maps
// them to Low, Medium and High; [Binary] collapses those to Safe (Low) and
// Unsafe (Medium, High). Labels outside a scheme are rejected.
//
// # ID Generation
//
// Assessment IDs are deterministic SHA-256 hashes of location|hour|model, so a
// replayed forecast produces the same IDs. See [generateID].
package domain
