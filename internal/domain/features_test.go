package domain

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/bikelane-risk/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesRowMatchesNames(t *testing.T) {
	f := Features{WeatherCode: 61, WindSpeed: 22, Precipitation: 1.5, HeatIndex: 19, Rain3h: 6, MaxWind3h: 30}

	m := f.Map()
	row := f.Row()
	names := FeatureNames()
	require.Len(t, row, len(names))
	require.Len(t, m, len(names))
	for j, name := range names {
		assert.Equal(t, m[name], row[j], name)
	}
}

func TestLabelSchemes(t *testing.T) {
	tests := []struct {
		scheme *dataset.LabelMapping
		raw    string
		want   string
	}{
		{ThreeClass, "Baixo", RiskLow},
		{ThreeClass, "Médio", RiskMedium},
		{ThreeClass, "Medio", RiskMedium},
		{ThreeClass, "Alto", RiskHigh},
		{ThreeClass, "High", RiskHigh},
		{Binary, "Baixo", RiskSafe},
		{Binary, "Médio", RiskUnsafe},
		{Binary, "Alto", RiskUnsafe},
		{Binary, "Low", RiskSafe},
	}
	for _, tt := range tests {
		t.Run(tt.scheme.Name+"/"+tt.raw, func(t *testing.T) {
			got, err := tt.scheme.Map(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ThreeClass.Map("Extremo")
	require.ErrorIs(t, err, dataset.ErrUnknownLabel)
}

func TestLabelScheme(t *testing.T) {
	m, ok := LabelScheme("binary")
	require.True(t, ok)
	assert.Same(t, Binary, m)

	_, ok = LabelScheme("five-class")
	assert.False(t, ok)
}

func TestWriteProcessedCSV(t *testing.T) {
	zone := time.FixedZone("-03", -10800)
	hours := []Hour{{
		Observation: Observation{Time: time.Date(2024, 3, 10, 1, 0, 0, 0, zone), Temperature: 20, Humidity: 70},
		Features:    Features{WeatherCode: 3, WindSpeed: 20, Precipitation: 1.5, HeatIndex: 19.175, Rain3h: 1.5, MaxWind3h: 20},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteProcessedCSV(&buf, hours))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "time,temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m,precipitation,sensacao_termica,chuva_acumulada_3h,rajada_maxima_3h", lines[0])
	assert.Equal(t, "2024-03-10T01:00,20,70,3,20,1.5,19.175,1.5,20", lines[1])

	d, err := dataset.ReadCSV(&buf, dataset.Schema{Features: FeatureNames()})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{hours[0].Features.Row()}, d.Rows)
}
