// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"travel-companion/internal/common/cache"
	"travel-companion/internal/common/config"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/itinerary"
	"travel-companion/internal/providers/genai"
	"travel-companion/internal/providers/transport"
	"travel-companion/internal/providers/weather"
	"travel-companion/internal/providers/websearch"
	"travel-companion/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("starting travel-companion", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	// Response cache; the pipeline runs uncached when Redis is off or down.
	var store cache.Cache = cache.NewNoOp()
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedis(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, running without response cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			store = redisCache
			defer redisCache.Close()
		}
		cancel()
	}

	weatherClient := weather.NewClient(&weather.Config{
		BaseURL:         cfg.Providers.Weather.BaseURL,
		APIKey:          cfg.Providers.Weather.APIKey,
		Timeout:         cfg.Providers.Weather.TimeoutDuration(),
		CacheTTL:        cfg.Providers.Weather.CacheTTLDuration(),
		MaxForecastDays: 10,
	}, store, log)

	searchClient := websearch.NewClient(&websearch.Config{
		BaseURL:             cfg.Providers.WebSearch.BaseURL,
		APIKey:              cfg.Providers.WebSearch.APIKey,
		Timeout:             cfg.Providers.WebSearch.TimeoutDuration(),
		CacheTTL:            cfg.Providers.WebSearch.CacheTTLDuration(),
		MaxResults:          10,
		MinRelevance:        0.2,
		DefaultActivityCost: cfg.Pipeline.DefaultActivityCost,
	}, store, log)

	transportClient := transport.NewClient(&transport.Config{
		BaseURL:  cfg.Providers.Transport.BaseURL,
		APIKey:   cfg.Providers.Transport.APIKey,
		Timeout:  cfg.Providers.Transport.TimeoutDuration(),
		CacheTTL: cfg.Providers.Transport.CacheTTLDuration(),
	}, store, log)

	genaiClient := genai.NewClient(&genai.Config{
		BaseURL:     cfg.GenAI.BaseURL,
		APIKey:      cfg.GenAI.APIKey,
		Model:       cfg.GenAI.Model,
		Timeout:     cfg.GenAI.TimeoutDuration(),
		MaxRetries:  cfg.GenAI.MaxRetries,
		MaxTokens:   cfg.GenAI.MaxTokens,
		Temperature: cfg.GenAI.Temperature,
	}, log)

	loc, _ := time.LoadLocation(cfg.Pipeline.Timezone)
	evaluator := itinerary.NewEvaluator(
		cfg.Pipeline.MaxDurationDays,
		time.Duration(cfg.Pipeline.GraceWindowHours)*time.Hour,
		loc,
	)

	orchestrator := itinerary.NewOrchestrator(weatherClient, searchClient, transportClient,
		itinerary.OrchestratorConfig{
			Attempts:         cfg.Pipeline.ProviderAttempts,
			BackoffBase:      cfg.Pipeline.BackoffBase(),
			WeatherTimeout:   cfg.Providers.Weather.TimeoutDuration(),
			SearchTimeout:    cfg.Providers.WebSearch.TimeoutDuration(),
			TransportTimeout: cfg.Providers.Transport.TimeoutDuration(),
		}, log)

	assembler := itinerary.NewAssembler(itinerary.AssemblerConfig{
		WeatherDiscount:      cfg.Pipeline.WeatherDiscount,
		MaxActivitiesPerDay:  cfg.Pipeline.MaxActivitiesPerDay,
		PlaceholderCost:      cfg.Pipeline.PlaceholderCost,
		UnknownWeatherIndoor: cfg.Pipeline.UnknownWeatherIndoor,
	})

	pipeline := itinerary.NewPipeline(evaluator, orchestrator, assembler, genaiClient, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.New(pipeline, searchClient, weatherClient, log).Router(cfg.App.Version),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("shutdown failed", zap.Error(err))
	}

	log.Info("stopped", nil)
}
