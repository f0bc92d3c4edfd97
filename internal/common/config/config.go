// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Providers ProvidersConfig `mapstructure:"providers"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// --- External Provider Config ---

// ProviderConfig holds the settings shared by every external provider client.
type ProviderConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

func (p ProviderConfig) TimeoutDuration() time.Duration {
	if p.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.Timeout) * time.Millisecond
}

func (p ProviderConfig) CacheTTLDuration() time.Duration {
	if p.CacheTTL <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(p.CacheTTL) * time.Second
}

type ProvidersConfig struct {
	Weather   ProviderConfig `mapstructure:"weather"`
	WebSearch ProviderConfig `mapstructure:"web_search"`
	Transport ProviderConfig `mapstructure:"transport"`
}

type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

func (g GenAIConfig) TimeoutDuration() time.Duration {
	if g.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.Timeout) * time.Millisecond
}

// --- Pipeline Tunables ---

// PipelineConfig holds the itinerary assembly knobs. The defaults here are
// tunable operating points, not hard requirements.
type PipelineConfig struct {
	MaxDurationDays      int     `mapstructure:"max_duration_days"`
	GraceWindowHours     int     `mapstructure:"grace_window_hours"`
	Timezone             string  `mapstructure:"timezone"`
	ProviderAttempts     int     `mapstructure:"provider_attempts"`
	BackoffBaseMillis    int     `mapstructure:"backoff_base_millis"`
	WeatherDiscount      float64 `mapstructure:"weather_discount"`
	MaxActivitiesPerDay  int     `mapstructure:"max_activities_per_day"`
	DefaultActivityCost  int64   `mapstructure:"default_activity_cost"`  // smallest currency unit
	PlaceholderCost      int64   `mapstructure:"placeholder_cost"`       // smallest currency unit
	UnknownWeatherIndoor bool    `mapstructure:"unknown_weather_indoor"` // conservative substitution
}

func (p PipelineConfig) BackoffBase() time.Duration {
	if p.BackoffBaseMillis <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(p.BackoffBaseMillis) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
