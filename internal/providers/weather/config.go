// internal/providers/weather/config.go
package weather

import "time"

type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
	// MaxForecastDays is the backend's forecast horizon; requests beyond it
	// are clamped and the tail padded with unknown days.
	MaxForecastDays int
}
