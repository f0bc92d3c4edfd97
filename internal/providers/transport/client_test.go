// internal/providers/transport/client_test.go
package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-companion/internal/common/cache"
	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/itinerary"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	}
}

func routesFixture() string {
	return `{"routes": [
		{"mode": "train", "cost": 150.50, "duration_minutes": 90},
		{"mode": "flight", "cost": 320.00, "duration_minutes": 45},
		{"mode": "hovercraft", "cost": 80.00, "duration_minutes": 200}
	]}`
}

func TestClient_GetOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/routes", r.URL.Path)
		assert.Equal(t, "Osaka", r.URL.Query().Get("origin"))
		assert.Equal(t, "Kyoto", r.URL.Query().Get("destination"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, routesFixture())
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewTestLogger(t))
	options, err := client.GetOptions(context.Background(), "Osaka", "Kyoto")

	require.NoError(t, err)
	require.Len(t, options, 3)

	assert.Equal(t, itinerary.ModeTrain, options[0].Mode)
	assert.Equal(t, int64(15050), options[0].EstimatedCost)
	assert.Equal(t, 90, options[0].DurationMinutes)
	assert.Equal(t, "Osaka", options[0].Source)
	assert.Equal(t, "Kyoto", options[0].Destination)

	assert.Equal(t, itinerary.ModeFlight, options[1].Mode)
	assert.Equal(t, int64(32000), options[1].EstimatedCost)

	// Unrecognized modes still surface as candidates.
	assert.Equal(t, itinerary.ModeOther, options[2].Mode)
}

func TestClient_GetOptions_ServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, routesFixture())
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), store, logger.NewNoOpLogger())

	first, err := client.GetOptions(context.Background(), "Osaka", "Kyoto")
	require.NoError(t, err)
	second, err := client.GetOptions(context.Background(), "Osaka", "Kyoto")
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, first, second)
}

func TestClient_GetOptions_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoOpLogger())
	_, err := client.GetOptions(context.Background(), "Osaka", "Kyoto")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProviderUnavailable, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestClient_GetOptions_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, nil, logger.NewNoOpLogger())

	_, err := client.GetOptions(context.Background(), "Osaka", "Kyoto")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProviderTimeout, errors.CodeOf(err))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw  string
		want itinerary.TransportMode
	}{
		{"flight", itinerary.ModeFlight},
		{"Plane", itinerary.ModeFlight},
		{"AIR", itinerary.ModeFlight},
		{"train", itinerary.ModeTrain},
		{"rail", itinerary.ModeTrain},
		{"bus", itinerary.ModeBus},
		{"coach", itinerary.ModeBus},
		{"car", itinerary.ModeCar},
		{"taxi", itinerary.ModeCar},
		{" drive ", itinerary.ModeCar},
		{"ferry", itinerary.ModeOther},
		{"", itinerary.ModeOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseMode(tt.raw), "mode %q", tt.raw)
	}
}
