// internal/itinerary/enrich.go
package itinerary

import (
	"context"
	"sync"
	"time"

	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/common/metrics"
)

// WeatherProvider fetches a per-day forecast for the trip window. It may
// return fewer entries than requested; the orchestrator pads the gaps.
type WeatherProvider interface {
	GetForecast(ctx context.Context, destination string, dateRange []time.Time) ([]WeatherDay, error)
}

// FactProvider fetches destination facts for the interest tags.
type FactProvider interface {
	Search(ctx context.Context, destination string, tags []string) ([]EnrichmentFact, error)
}

// TransportProvider fetches route candidates between source and destination.
type TransportProvider interface {
	GetOptions(ctx context.Context, source, destination string) ([]TransportOption, error)
}

// OrchestratorConfig bounds each provider branch.
type OrchestratorConfig struct {
	Attempts         int           // retry budget per provider, minimum 1
	BackoffBase      time.Duration // doubled per attempt
	WeatherTimeout   time.Duration
	SearchTimeout    time.Duration
	TransportTimeout time.Duration
}

// Orchestrator fans out to the three providers concurrently and merges their
// contributions. A provider that exhausts its retries degrades to its
// documented empty/unknown value; enrichment itself never fails because of a
// provider.
type Orchestrator struct {
	weather   WeatherProvider
	facts     FactProvider
	transport TransportProvider
	cfg       OrchestratorConfig
	logger    logger.Logger
}

func NewOrchestrator(
	weather WeatherProvider,
	facts FactProvider,
	transport TransportProvider,
	cfg OrchestratorConfig,
	log logger.Logger,
) *Orchestrator {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 100 * time.Millisecond
	}
	return &Orchestrator{
		weather:   weather,
		facts:     facts,
		transport: transport,
		cfg:       cfg,
		logger:    log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Enrich runs all provider branches and joins them at a barrier. It returns
// an error only for a structurally invalid request or caller cancellation,
// never for provider failure.
func (o *Orchestrator) Enrich(ctx context.Context, req *CanonicalPlanRequest) (*EnrichedContext, error) {
	if req == nil || len(req.DateRange) == 0 || len(req.Interests) == 0 {
		return nil, errors.NewValidationError("request", "canonical request is structurally invalid")
	}

	out := &EnrichedContext{}
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		days, err := retryProvider(ctx, o.cfg, o.cfg.WeatherTimeout, "weather", o.logger,
			func(callCtx context.Context) ([]WeatherDay, error) {
				return o.weather.GetForecast(callCtx, req.Destination, req.DateRange)
			})
		if err != nil {
			out.WeatherDegraded = true
			out.Weather = allUnknown(req.DateRange)
			return
		}
		out.Weather = alignWeather(req.DateRange, days)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		facts, err := retryProvider(ctx, o.cfg, o.cfg.SearchTimeout, "websearch", o.logger,
			func(callCtx context.Context) ([]EnrichmentFact, error) {
				return o.facts.Search(callCtx, req.Destination, req.Interests)
			})
		if err != nil {
			out.FactsDegraded = true
			out.Facts = []EnrichmentFact{}
			return
		}
		out.Facts = facts
	}()

	if req.WantsTransport() && o.transport != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			options, err := retryProvider(ctx, o.cfg, o.cfg.TransportTimeout, "transport", o.logger,
				func(callCtx context.Context) ([]TransportOption, error) {
					return o.transport.GetOptions(callCtx, req.Source, req.Destination)
				})
			if err != nil {
				out.TransportDegraded = true
				out.Transport = []TransportOption{}
				return
			}
			out.Transport = options
		}()
	} else {
		out.Transport = []TransportOption{}
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return out, nil
}

// retryProvider runs fn up to cfg.Attempts times with exponential backoff
// and a per-attempt timeout. The last error is returned once the budget is
// exhausted; the caller then degrades that branch.
func retryProvider[T any](
	ctx context.Context,
	cfg OrchestratorConfig,
	timeout time.Duration,
	provider string,
	log logger.Logger,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			backoff := cfg.BackoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		metrics.ProviderRequests.WithLabelValues(provider).Inc()

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := fn(callCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err

		metrics.ProviderFailures.WithLabelValues(provider, string(errors.CodeOf(err))).Inc()
		log.Warn("provider call failed", map[string]interface{}{
			"provider": provider,
			"attempt":  attempt + 1,
			"error":    err.Error(),
		})

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !errors.IsRetryable(err) {
			break
		}
	}

	metrics.ProviderDegradations.WithLabelValues(provider).Inc()
	log.Warn("provider exhausted retries, degrading", map[string]interface{}{
		"provider": provider,
		"attempts": cfg.Attempts,
	})
	return zero, lastErr
}

// alignWeather maps provider output onto the trip window by date. Dates the
// provider did not cover become unknown, never omitted.
func alignWeather(dateRange []time.Time, days []WeatherDay) []WeatherDay {
	byDate := make(map[string]WeatherDay, len(days))
	for _, d := range days {
		byDate[d.Date.Format("2006-01-02")] = d
	}

	out := make([]WeatherDay, len(dateRange))
	for i, date := range dateRange {
		if d, ok := byDate[date.Format("2006-01-02")]; ok {
			d.Date = date
			out[i] = d
		} else {
			out[i] = UnknownWeatherDay(date)
		}
	}
	return out
}

func allUnknown(dateRange []time.Time) []WeatherDay {
	out := make([]WeatherDay, len(dateRange))
	for i, date := range dateRange {
		out[i] = UnknownWeatherDay(date)
	}
	return out
}
