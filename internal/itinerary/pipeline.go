// internal/itinerary/pipeline.go
package itinerary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"travel-companion/internal/common/logger"
	"travel-companion/internal/common/metrics"

	"github.com/google/uuid"
)

// Synthesizer is the external AI collaborator. Its output layers narrative
// text over the finalized structure and is never allowed to alter it.
type Synthesizer interface {
	Synthesize(ctx context.Context, plans []DayPlan, req *CanonicalPlanRequest) (string, error)
}

// Pipeline is the end-to-end itinerary generator. All entities it builds
// live for one run only.
type Pipeline struct {
	evaluator    *Evaluator
	orchestrator *Orchestrator
	assembler    *Assembler
	synthesizer  Synthesizer
	logger       logger.Logger
}

func NewPipeline(
	evaluator *Evaluator,
	orchestrator *Orchestrator,
	assembler *Assembler,
	synthesizer Synthesizer,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		evaluator:    evaluator,
		orchestrator: orchestrator,
		assembler:    assembler,
		synthesizer:  synthesizer,
		logger:       log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// GenerateItinerary runs the full pipeline. It fails only for invalid input
// or caller cancellation; provider and AI degradation are annotated on the
// result instead of surfacing as errors.
func (p *Pipeline) GenerateItinerary(ctx context.Context, req TripRequest) (*FinalItinerary, error) {
	started := time.Now()

	canonical, err := p.evaluator.Evaluate(req)
	if err != nil {
		return nil, err
	}

	enrichStart := time.Now()
	ectx, err := p.orchestrator.Enrich(ctx, canonical)
	if err != nil {
		return nil, err
	}
	metrics.PipelineDuration.WithLabelValues("enrich").Observe(time.Since(enrichStart).Seconds())

	plans := p.assembler.Assemble(canonical, ectx)

	result := &FinalItinerary{
		ID:                   uuid.NewString(),
		Destination:          canonical.Destination,
		Interests:            canonical.Interests,
		TotalBudget:          canonical.Budget,
		Days:                 plans,
		WeatherSummary:       summarizeConditions(ectx.Weather),
		WeatherUnavailable:   ectx.WeatherDegraded,
		FactsUnavailable:     ectx.FactsDegraded,
		TransportUnavailable: ectx.TransportDegraded,
		GeneratedAt:          time.Now().UTC(),
	}

	synthStart := time.Now()
	narrative, err := p.synthesizer.Synthesize(ctx, plans, canonical)
	metrics.PipelineDuration.WithLabelValues("synthesize").Observe(time.Since(synthStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.NarrativeFallbacks.Inc()
		p.logger.Warn("narrative synthesis unavailable, returning structured itinerary", map[string]interface{}{
			"itineraryId": result.ID,
			"error":       err.Error(),
		})
		result.NarrativeUnavailable = true
	} else {
		result.Narrative = narrative
	}

	metrics.PipelineDuration.WithLabelValues("total").Observe(time.Since(started).Seconds())
	p.logger.Info("itinerary generated", map[string]interface{}{
		"itineraryId":          result.ID,
		"destination":          result.Destination,
		"days":                 len(result.Days),
		"weatherUnavailable":   result.WeatherUnavailable,
		"factsUnavailable":     result.FactsUnavailable,
		"transportUnavailable": result.TransportUnavailable,
		"narrativeUnavailable": result.NarrativeUnavailable,
	})

	return result, nil
}

// summarizeConditions renders a trip-level weather summary from the daily
// conditions, by frequency.
func summarizeConditions(weather []WeatherDay) string {
	if len(weather) == 0 {
		return ""
	}

	counts := make(map[Condition]int)
	known := 0
	for _, d := range weather {
		if d.Condition == ConditionUnknown {
			continue
		}
		counts[d.Condition]++
		known++
	}

	if known == 0 {
		return "weather data unavailable"
	}

	type freq struct {
		cond  Condition
		count int
	}
	sorted := make([]freq, 0, len(counts))
	for c, n := range counts {
		sorted = append(sorted, freq{c, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].cond < sorted[j].cond
	})

	if len(sorted) == 1 {
		return fmt.Sprintf("consistently %s throughout your trip", sorted[0].cond)
	}

	if float64(sorted[0].count)/float64(known) >= 0.5 {
		others := make([]string, 0, len(sorted)-1)
		for _, f := range sorted[1:] {
			others = append(others, string(f.cond))
		}
		return fmt.Sprintf("mostly %s with some %s", sorted[0].cond, strings.Join(others, ", "))
	}

	limit := len(sorted)
	if limit > 3 {
		limit = 3
	}
	names := make([]string, 0, limit)
	for _, f := range sorted[:limit] {
		names = append(names, string(f.cond))
	}
	return fmt.Sprintf("variable conditions including %s", strings.Join(names, ", "))
}
