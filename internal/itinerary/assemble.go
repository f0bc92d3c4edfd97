// internal/itinerary/assemble.go
package itinerary

import (
	"fmt"
	"sort"
)

// AssemblerConfig carries the tunable assembly constants. Defaults are
// applied by NewAssembler for zero values.
type AssemblerConfig struct {
	// WeatherDiscount scales the baseline allocation of indoor-recommended
	// days; the savings are redistributed across the remaining days.
	WeatherDiscount     float64
	MaxActivitiesPerDay int
	PlaceholderCost     int64 // smallest currency unit
	// UnknownWeatherIndoor applies indoor substitution to unknown-condition
	// days as a conservative default. It never affects budget discounts.
	UnknownWeatherIndoor bool
}

// indoorCatalog backs placeholders and captions on indoor-recommended days.
var indoorCatalog = []string{
	"Museum visit",
	"Indoor market tour",
	"Local food tasting",
	"Art gallery visit",
	"Cooking class",
	"Theater or performance",
}

// Assembler maps an enriched context onto a day-by-day structured plan. The
// output always has exactly one DayPlan per trip day, in date order, and the
// per-day allocations sum exactly to the requested budget.
type Assembler struct {
	cfg AssemblerConfig
}

func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.WeatherDiscount <= 0 || cfg.WeatherDiscount > 1 {
		cfg.WeatherDiscount = 0.8
	}
	if cfg.MaxActivitiesPerDay <= 0 {
		cfg.MaxActivitiesPerDay = 4
	}
	if cfg.PlaceholderCost < 0 {
		cfg.PlaceholderCost = 0
	}
	return &Assembler{cfg: cfg}
}

// Assemble builds the DayPlan sequence. It is deterministic: identical
// inputs yield identical output.
func (a *Assembler) Assemble(req *CanonicalPlanRequest, ectx *EnrichedContext) []DayPlan {
	n := req.Duration()
	weather := ectx.Weather
	if len(weather) != n {
		weather = alignWeather(req.DateRange, weather)
	}

	allocations := a.allocateBudget(req.Budget, weather)

	used := make([]bool, len(ectx.Facts))
	plans := make([]DayPlan, n)

	for i := 0; i < n; i++ {
		tag := req.Interests[i%len(req.Interests)]
		day := weather[i]

		activities, indoorSrc := a.selectActivities(ectx.Facts, used, tag, allocations[i])
		if a.substitutionNeeded(day) {
			activities = a.substituteIndoor(activities, indoorSrc, ectx.Facts, used, day, allocations[i])
		}
		if len(activities) == 0 {
			activities = []Activity{a.placeholder(tag, i, allocations[i], a.substitutionNeeded(day))}
		}

		plans[i] = DayPlan{
			Date:            req.DateRange[i],
			Activities:      activities,
			Weather:         day,
			AllocatedBudget: allocations[i],
		}
	}

	if best := bestTransport(ectx.Transport); best != nil {
		plans[0].Transport = best
	}

	return plans
}

// allocateBudget splits the total budget across days in the smallest
// currency unit. Indoor-recommended days receive the discount factor and the
// savings are spread evenly over the remaining days; the rounding remainder
// lands on the last day so the sum is always exact.
func (a *Assembler) allocateBudget(total int64, weather []WeatherDay) []int64 {
	n := len(weather)
	alloc := make([]int64, n)

	discounted := 0
	for _, d := range weather {
		if d.IndoorRecommended {
			discounted++
		}
	}

	regular := n - discounted
	if discounted == 0 || regular == 0 {
		// Equal split; nothing to redistribute.
		each := total / int64(n)
		var sum int64
		for i := range alloc {
			alloc[i] = each
			sum += each
		}
		alloc[n-1] += total - sum
		return alloc
	}

	baseline := total / int64(n)
	discountedShare := int64(float64(baseline) * a.cfg.WeatherDiscount)
	pool := total - int64(discounted)*discountedShare
	regularShare := pool / int64(regular)

	var sum int64
	for i, d := range weather {
		if d.IndoorRecommended {
			alloc[i] = discountedShare
		} else {
			alloc[i] = regularShare
		}
		sum += alloc[i]
	}
	alloc[n-1] += total - sum

	return alloc
}

// selectActivities picks up to MaxActivitiesPerDay unused facts for the
// day's interest tag, greedy by relevance-to-cost ratio, keeping the
// cumulative cost within the day's allocation. Facts tied to the day's tag
// are considered before the rest. Ties break by insertion order.
func (a *Assembler) selectActivities(facts []EnrichmentFact, used []bool, tag string, budget int64) ([]Activity, []bool) {
	tagged := candidateIndices(facts, used, func(f EnrichmentFact) bool { return f.MatchesTag(tag) })
	rest := candidateIndices(facts, used, func(f EnrichmentFact) bool { return !f.MatchesTag(tag) })
	ordered := append(rankByValue(facts, tagged), rankByValue(facts, rest)...)

	var activities []Activity
	var indoorSrc []bool
	var spent int64

	for _, idx := range ordered {
		if len(activities) >= a.cfg.MaxActivitiesPerDay {
			break
		}
		f := facts[idx]
		if spent+f.EstimatedCost > budget {
			continue
		}
		used[idx] = true
		spent += f.EstimatedCost
		activities = append(activities, Activity{
			Title:         activityTitle(f),
			InterestTag:   tag,
			EstimatedCost: f.EstimatedCost,
		})
		indoorSrc = append(indoorSrc, f.Indoor)
	}

	return activities, indoorSrc
}

func candidateIndices(facts []EnrichmentFact, used []bool, match func(EnrichmentFact) bool) []int {
	var idx []int
	for i, f := range facts {
		if !used[i] && match(f) {
			idx = append(idx, i)
		}
	}
	return idx
}

// rankByValue orders indices by descending relevance-to-cost ratio; the
// stable sort preserves insertion order on ties.
func rankByValue(facts []EnrichmentFact, idx []int) []int {
	out := make([]int, len(idx))
	copy(out, idx)
	sort.SliceStable(out, func(i, j int) bool {
		return valueRatio(facts[out[i]]) > valueRatio(facts[out[j]])
	})
	return out
}

func valueRatio(f EnrichmentFact) float64 {
	cost := f.EstimatedCost
	if cost < 1 {
		cost = 1
	}
	return f.Relevance / float64(cost)
}

func (a *Assembler) substitutionNeeded(day WeatherDay) bool {
	if day.IndoorRecommended {
		return true
	}
	return day.Condition == ConditionUnknown && a.cfg.UnknownWeatherIndoor
}

// substituteIndoor swaps outdoor activities for indoor alternatives from the
// remaining facts when the day's weather discourages outdoor plans. When no
// alternative fits, the activity is kept with a carried caveat rather than
// dropped.
func (a *Assembler) substituteIndoor(activities []Activity, indoorSrc []bool, facts []EnrichmentFact, used []bool, day WeatherDay, budget int64) []Activity {
	var spent int64
	for _, act := range activities {
		spent += act.EstimatedCost
	}

	caveat := fmt.Sprintf("weather may be unfavorable (%s); no indoor alternative was available", day.Condition)

	for i, act := range activities {
		// Activities already sourced from indoor facts need no substitution.
		if indoorSrc[i] {
			continue
		}

		replaced := false
		headroom := budget - spent + act.EstimatedCost

		for _, idx := range rankByValue(facts, candidateIndices(facts, used, func(f EnrichmentFact) bool { return f.Indoor })) {
			f := facts[idx]
			if f.EstimatedCost > headroom {
				continue
			}
			used[idx] = true
			spent = spent - act.EstimatedCost + f.EstimatedCost
			activities[i] = Activity{
				Title:             activityTitle(f),
				InterestTag:       act.InterestTag,
				EstimatedCost:     f.EstimatedCost,
				IndoorAlternative: true,
			}
			replaced = true
			break
		}

		if !replaced {
			activities[i].Caveat = caveat
		}
	}

	return activities
}

// placeholder emits the low-cost generic activity for a day no fact fits.
func (a *Assembler) placeholder(tag string, dayIndex int, budget int64, indoor bool) Activity {
	cost := a.cfg.PlaceholderCost
	if cost > budget {
		cost = budget
	}
	title := fmt.Sprintf("Self-guided %s walk", tag)
	if indoor {
		title = fmt.Sprintf("%s (%s)", indoorCatalog[dayIndex%len(indoorCatalog)], tag)
	}
	return Activity{
		Title:             title,
		InterestTag:       tag,
		EstimatedCost:     cost,
		IndoorAlternative: indoor,
	}
}

func activityTitle(f EnrichmentFact) string {
	if f.Title != "" {
		return f.Title
	}
	snippet := f.Snippet
	if len(snippet) > 60 {
		snippet = snippet[:60]
	}
	return snippet
}

// bestTransport picks the top-ranked option: lowest cost, ties broken by
// shortest duration. Returned as metadata for the first day only.
func bestTransport(options []TransportOption) *TransportOption {
	if len(options) == 0 {
		return nil
	}
	best := options[0]
	for _, opt := range options[1:] {
		if opt.EstimatedCost < best.EstimatedCost ||
			(opt.EstimatedCost == best.EstimatedCost && opt.DurationMinutes < best.DurationMinutes) {
			best = opt
		}
	}
	return &best
}
