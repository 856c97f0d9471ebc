//go:build openmeteo

package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Open-Meteo API.
// Run with: go test -tags=openmeteo ./internal/adapter/openmeteo/ -v -count=1

func smokeClient() *Client {
	return NewClient(DefaultBaseURL, 10*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var saoPaulo = domain.Location{ID: "sp-centro", Name: "São Paulo Centro", Latitude: -23.5505, Longitude: -46.6333}

func TestSmoke_Fetch(t *testing.T) {
	f, err := smokeClient().Fetch(context.Background(), saoPaulo, 24, "America/Sao_Paulo")
	require.NoError(t, err)

	assert.Len(t, f.Hourly.Time, 24)
	assert.Len(t, f.Hourly.WindSpeed, 24)
	assert.Equal(t, "America/Sao_Paulo", f.Timezone)
	assert.Equal(t, "sp-centro", f.LocationID)

	hours, err := domain.Prepare(f)
	require.NoError(t, err)
	assert.Len(t, hours, 24)
}

func TestSmoke_CachedClient(t *testing.T) {
	cached := NewCachedClient(smokeClient(), 10, time.Minute, observability.NewMetricsForTesting())

	f1, err := cached.Fetch(context.Background(), saoPaulo, 6, "America/Sao_Paulo")
	require.NoError(t, err)
	f2, err := cached.Fetch(context.Background(), saoPaulo, 6, "America/Sao_Paulo")
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
}
