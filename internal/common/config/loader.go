// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like WEATHER_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if absent
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from the usual run locations.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from well-known env vars when the YAML
// left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Providers.Weather.APIKey == "" {
		if val := os.Getenv("WEATHER_API_KEY"); val != "" {
			cfg.Providers.Weather.APIKey = val
		}
	}
	if cfg.Providers.WebSearch.APIKey == "" {
		if val := os.Getenv("SERPAPI_KEY"); val != "" {
			cfg.Providers.WebSearch.APIKey = val
		}
	}
	if cfg.Providers.Transport.APIKey == "" {
		if val := os.Getenv("TRANSPORT_API_KEY"); val != "" {
			cfg.Providers.Transport.APIKey = val
		}
	}
	if cfg.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.GenAI.APIKey = val
		}
	}
	if cfg.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "travel-companion"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 20
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	// Provider timeout/TTL defaults
	if cfg.Providers.Weather.Timeout == 0 {
		cfg.Providers.Weather.Timeout = 10000
	}
	if cfg.Providers.WebSearch.Timeout == 0 {
		cfg.Providers.WebSearch.Timeout = 10000
	}
	if cfg.Providers.Transport.Timeout == 0 {
		cfg.Providers.Transport.Timeout = 10000
	}
	if cfg.Providers.Weather.CacheTTL == 0 {
		cfg.Providers.Weather.CacheTTL = 1800
	}
	if cfg.Providers.WebSearch.CacheTTL == 0 {
		cfg.Providers.WebSearch.CacheTTL = 3600
	}
	if cfg.Providers.Transport.CacheTTL == 0 {
		cfg.Providers.Transport.CacheTTL = 3600
	}

	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 60000
	}
	if cfg.GenAI.MaxRetries == 0 {
		cfg.GenAI.MaxRetries = 2
	}
	if cfg.GenAI.MaxTokens == 0 {
		cfg.GenAI.MaxTokens = 2048
	}
	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = "gemini-1.5-flash"
	}

	// Pipeline defaults
	if cfg.Pipeline.MaxDurationDays == 0 {
		cfg.Pipeline.MaxDurationDays = 30
	}
	if cfg.Pipeline.GraceWindowHours == 0 {
		cfg.Pipeline.GraceWindowHours = 24
	}
	if cfg.Pipeline.Timezone == "" {
		cfg.Pipeline.Timezone = "UTC"
	}
	if cfg.Pipeline.ProviderAttempts == 0 {
		cfg.Pipeline.ProviderAttempts = 2
	}
	if cfg.Pipeline.BackoffBaseMillis == 0 {
		cfg.Pipeline.BackoffBaseMillis = 100
	}
	if cfg.Pipeline.WeatherDiscount == 0 {
		cfg.Pipeline.WeatherDiscount = 0.8
	}
	if cfg.Pipeline.MaxActivitiesPerDay == 0 {
		cfg.Pipeline.MaxActivitiesPerDay = 4
	}
	if cfg.Pipeline.DefaultActivityCost == 0 {
		cfg.Pipeline.DefaultActivityCost = 2500
	}
	if cfg.Pipeline.PlaceholderCost == 0 {
		cfg.Pipeline.PlaceholderCost = 500
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Providers.Weather.BaseURL == "" {
		return fmt.Errorf("providers.weather.base_url is required")
	}
	if cfg.Providers.WebSearch.BaseURL == "" {
		return fmt.Errorf("providers.web_search.base_url is required")
	}
	if cfg.GenAI.BaseURL == "" {
		return fmt.Errorf("genai.base_url is required")
	}

	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}

	if cfg.Pipeline.WeatherDiscount < 0 || cfg.Pipeline.WeatherDiscount > 1 {
		return fmt.Errorf("pipeline.weather_discount must be between 0 and 1")
	}

	if _, err := time.LoadLocation(cfg.Pipeline.Timezone); err != nil {
		return fmt.Errorf("pipeline.timezone %q is invalid: %w", cfg.Pipeline.Timezone, err)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
