// internal/providers/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-companion/internal/common/cache"
	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/common/metrics"
	"travel-companion/internal/itinerary"
)

const providerName = "weather"

// Client fetches per-day forecasts and resolves locations. It implements
// itinerary.WeatherProvider.
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

// GetForecast returns one WeatherDay per requested date, in order. Dates
// beyond the backend's horizon come back as unknown; the caller aligns the
// rest.
func (c *Client) GetForecast(ctx context.Context, destination string, dateRange []time.Time) ([]itinerary.WeatherDay, error) {
	if len(dateRange) == 0 {
		return nil, nil
	}

	key := cache.WeatherKey(destination, dateRange[0], len(dateRange))
	if cached, ok, _ := c.cache.Get(ctx, key); ok {
		var days []itinerary.WeatherDay
		if err := json.Unmarshal([]byte(cached), &days); err == nil {
			metrics.CacheHits.WithLabelValues(providerName).Inc()
			return days, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(providerName).Inc()

	days := len(dateRange)
	if days > c.config.MaxForecastDays {
		days = c.config.MaxForecastDays
	}

	endpoint := fmt.Sprintf("%s/forecast.json", c.config.BaseURL)
	params := url.Values{}
	params.Add("key", c.config.APIKey)
	params.Add("q", destination)
	params.Add("days", fmt.Sprintf("%d", days))
	params.Add("aqi", "no")
	params.Add("alerts", "yes")

	var payload forecastResponse
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	out := mapForecast(payload, dateRange)

	if encoded, err := json.Marshal(out); err == nil && ctx.Err() == nil {
		_ = c.cache.Set(context.WithoutCancel(ctx), key, string(encoded), c.config.CacheTTL)
	}

	c.logger.Info("forecast fetched", map[string]interface{}{
		"destination": destination,
		"requested":   len(dateRange),
		"covered":     len(payload.Forecast.ForecastDay),
	})

	return out, nil
}

// ValidateLocation checks whether the backend can resolve the location.
func (c *Client) ValidateLocation(ctx context.Context, location string) (bool, error) {
	endpoint := fmt.Sprintf("%s/search.json", c.config.BaseURL)
	params := url.Values{}
	params.Add("key", c.config.APIKey)
	params.Add("q", location)

	var matches []locationData
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &matches); err != nil {
		return false, err
	}

	return len(matches) > 0, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return errors.NewProviderUnavailableError(providerName, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return errors.NewProviderTimeoutError(providerName)
		}
		return errors.NewProviderUnavailableError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewProviderUnavailableError(providerName,
			fmt.Errorf("weather API returned %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewProviderUnavailableError(providerName, err)
	}
	return nil
}

// mapForecast converts backend days onto the trip window. Uncovered dates
// become unknown so the sequence stays date-aligned.
func mapForecast(payload forecastResponse, dateRange []time.Time) []itinerary.WeatherDay {
	byDate := make(map[string]forecastDay, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		byDate[fd.Date] = fd
	}

	out := make([]itinerary.WeatherDay, len(dateRange))
	for i, date := range dateRange {
		fd, ok := byDate[date.Format("2006-01-02")]
		if !ok {
			out[i] = itinerary.UnknownWeatherDay(date)
			continue
		}

		cond := classifyCondition(fd.Day.Condition.Text, fd.Day.TotalPrecipMM)
		avg := (fd.Day.MaxTempC + fd.Day.MinTempC) / 2
		out[i] = itinerary.WeatherDay{
			Date:              date,
			Condition:         cond,
			MinTempC:          fd.Day.MinTempC,
			MaxTempC:          fd.Day.MaxTempC,
			IndoorRecommended: cond.IndoorRecommended(),
			Clothing:          clothingFor(avg, fd.Day.Condition.Text),
		}
	}
	return out
}

// classifyCondition folds the backend's free-text condition into the
// pipeline's category enum.
func classifyCondition(text string, precipMM float64) itinerary.Condition {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return itinerary.ConditionUnknown
	case strings.Contains(t, "thunder"), strings.Contains(t, "hurricane"),
		strings.Contains(t, "tornado"), strings.Contains(t, "blizzard"):
		return itinerary.ConditionExtreme
	case strings.Contains(t, "snow"), strings.Contains(t, "sleet"),
		strings.Contains(t, "ice"):
		return itinerary.ConditionSnow
	case strings.Contains(t, "rain"), strings.Contains(t, "drizzle"),
		strings.Contains(t, "shower"), strings.Contains(t, "storm"),
		precipMM >= 5:
		return itinerary.ConditionRain
	default:
		return itinerary.ConditionClear
	}
}

// clothingFor builds temperature- and condition-band clothing hints.
func clothingFor(avgTempC float64, condition string) []string {
	var recs []string

	switch {
	case avgTempC < 0:
		recs = append(recs, "Heavy winter coat", "Thermal underlayers", "Winter hat", "Gloves")
	case avgTempC < 10:
		recs = append(recs, "Winter coat", "Sweater or layers", "Warm hat")
	case avgTempC < 20:
		recs = append(recs, "Light jacket", "Long sleeves", "Closed-toe shoes")
	case avgTempC < 25:
		recs = append(recs, "Light layers", "Long or short sleeves")
	default:
		recs = append(recs, "Light breathable clothing", "Short sleeves", "Sun hat")
	}

	cond := strings.ToLower(condition)
	switch {
	case strings.Contains(cond, "rain"), strings.Contains(cond, "drizzle"), strings.Contains(cond, "shower"):
		recs = append(recs, "Waterproof jacket", "Umbrella")
	case strings.Contains(cond, "snow"):
		recs = append(recs, "Waterproof boots")
	case strings.Contains(cond, "sun"), strings.Contains(cond, "clear"):
		recs = append(recs, "Sunglasses", "Sunscreen")
	case strings.Contains(cond, "wind"):
		recs = append(recs, "Windbreaker")
	}

	return recs
}
