// internal/providers/transport/client.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"travel-companion/internal/common/cache"
	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/common/metrics"
	"travel-companion/internal/itinerary"
)

const providerName = "transport"

// routesResponse mirrors the route backend's payload.
type routesResponse struct {
	Routes []routeOption `json:"routes"`
}

type routeOption struct {
	Mode            string  `json:"mode"`
	Cost            float64 `json:"cost"` // major currency units
	DurationMinutes int     `json:"duration_minutes"`
}

// Client fetches point-to-point route candidates. It implements
// itinerary.TransportProvider.
type Client struct {
	config *Config
	client *http.Client
	cache  cache.Cache
	logger logger.Logger
}

func NewClient(config *Config, store cache.Cache, log logger.Logger) *Client {
	if store == nil {
		store = cache.NewNoOp()
	}
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		cache: store,
		logger: log.With(map[string]interface{}{
			"provider": providerName,
		}),
	}
}

// GetOptions returns the route candidates between source and destination.
func (c *Client) GetOptions(ctx context.Context, source, destination string) ([]itinerary.TransportOption, error) {
	key := cache.TransportKey(source, destination)
	if cached, ok, _ := c.cache.Get(ctx, key); ok {
		var options []itinerary.TransportOption
		if err := json.Unmarshal([]byte(cached), &options); err == nil {
			metrics.CacheHits.WithLabelValues(providerName).Inc()
			return options, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(providerName).Inc()

	baseURL, _ := url.Parse(c.config.BaseURL + "/routes")
	params := url.Values{}
	params.Add("origin", source)
	params.Add("destination", destination)
	params.Add("key", c.config.APIKey)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, errors.NewProviderUnavailableError(providerName, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, errors.NewProviderTimeoutError(providerName)
		}
		return nil, errors.NewProviderUnavailableError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewProviderUnavailableError(providerName,
			fmt.Errorf("transport API returned %d", resp.StatusCode))
	}

	var payload routesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewProviderUnavailableError(providerName, err)
	}

	options := make([]itinerary.TransportOption, 0, len(payload.Routes))
	for _, r := range payload.Routes {
		options = append(options, itinerary.TransportOption{
			Mode:            parseMode(r.Mode),
			EstimatedCost:   int64(r.Cost * 100),
			DurationMinutes: r.DurationMinutes,
			Source:          source,
			Destination:     destination,
		})
	}

	if encoded, err := json.Marshal(options); err == nil && ctx.Err() == nil {
		_ = c.cache.Set(context.WithoutCancel(ctx), key, string(encoded), c.config.CacheTTL)
	}

	c.logger.Info("transport options fetched", map[string]interface{}{
		"source":      source,
		"destination": destination,
		"optionCount": len(options),
	})

	return options, nil
}

func parseMode(mode string) itinerary.TransportMode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "flight", "plane", "air":
		return itinerary.ModeFlight
	case "train", "rail":
		return itinerary.ModeTrain
	case "bus", "coach":
		return itinerary.ModeBus
	case "car", "drive", "taxi":
		return itinerary.ModeCar
	default:
		return itinerary.ModeOther
	}
}
