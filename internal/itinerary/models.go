// internal/itinerary/models.go
package itinerary

import (
	"time"
)

// Condition categorizes a day's forecast.
type Condition string

const (
	ConditionClear   Condition = "clear"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionExtreme Condition = "extreme"
	ConditionUnknown Condition = "unknown"
)

// IndoorRecommended reports whether the condition discourages outdoor plans.
func (c Condition) IndoorRecommended() bool {
	switch c {
	case ConditionRain, ConditionSnow, ConditionExtreme:
		return true
	default:
		return false
	}
}

// WeatherDay is the forecast for a single calendar day of the trip. A failed
// weather branch yields ConditionUnknown rather than a missing entry, so the
// sequence always stays date-aligned with the trip window.
type WeatherDay struct {
	Date              time.Time `json:"date"`
	Condition         Condition `json:"condition"`
	MinTempC          float64   `json:"minTempC"`
	MaxTempC          float64   `json:"maxTempC"`
	IndoorRecommended bool      `json:"indoorRecommended"`
	Clothing          []string  `json:"clothing,omitempty"`
}

// UnknownWeatherDay builds the degraded placeholder for a date.
func UnknownWeatherDay(date time.Time) WeatherDay {
	return WeatherDay{Date: date, Condition: ConditionUnknown}
}

// EnrichmentFact is one web-search-derived snippet about the destination.
type EnrichmentFact struct {
	Snippet   string   `json:"snippet"`
	Title     string   `json:"title"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags"`
	Relevance float64  `json:"relevance"` // 0..1
	Indoor    bool     `json:"indoor"`
	// EstimatedCost is in the smallest currency unit.
	EstimatedCost int64 `json:"estimatedCost"`
}

// MatchesTag reports whether the fact is tied to the given interest tag.
func (f EnrichmentFact) MatchesTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TransportMode enumerates route option kinds.
type TransportMode string

const (
	ModeFlight TransportMode = "flight"
	ModeTrain  TransportMode = "train"
	ModeBus    TransportMode = "bus"
	ModeCar    TransportMode = "car"
	ModeOther  TransportMode = "other"
)

// TransportOption is a single point-to-point route candidate.
type TransportOption struct {
	Mode            TransportMode `json:"mode"`
	EstimatedCost   int64         `json:"estimatedCost"` // smallest currency unit
	DurationMinutes int           `json:"durationMinutes"`
	Source          string        `json:"source"`
	Destination     string        `json:"destination"`
}

// EnrichedContext aggregates all provider contributions for one pipeline run.
// It is built once by the orchestrator and immutable afterward.
type EnrichedContext struct {
	Weather   []WeatherDay      `json:"weather"`
	Facts     []EnrichmentFact  `json:"facts"`
	Transport []TransportOption `json:"transport"`

	// Degradation flags record which branch exhausted its retries, so the
	// caller is never silently served a falsely-complete plan.
	WeatherDegraded   bool `json:"weatherDegraded"`
	FactsDegraded     bool `json:"factsDegraded"`
	TransportDegraded bool `json:"transportDegraded"`
}

// Activity is one planned entry in a day. Owned by its DayPlan.
type Activity struct {
	Title             string `json:"title"`
	InterestTag       string `json:"interestTag"`
	EstimatedCost     int64  `json:"estimatedCost"`
	IndoorAlternative bool   `json:"indoorAlternative"`
	Caveat            string `json:"caveat,omitempty"`
}

// DayPlan is the structured plan for one calendar day.
type DayPlan struct {
	Date            time.Time        `json:"date"`
	Activities      []Activity       `json:"activities"`
	Weather         WeatherDay       `json:"weather"`
	AllocatedBudget int64            `json:"allocatedBudget"` // smallest currency unit
	Transport       *TransportOption `json:"transport,omitempty"`
}

// FinalItinerary is what the pipeline hands back to the caller.
type FinalItinerary struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Interests   []string  `json:"interests"`
	TotalBudget int64     `json:"totalBudget"`
	Days        []DayPlan `json:"days"`

	WeatherSummary string `json:"weatherSummary,omitempty"`
	Narrative      string `json:"narrative,omitempty"`

	// Degradation flags, one per enrichment branch plus synthesis. A caller
	// is always told which parts of the plan ran without live data.
	WeatherUnavailable   bool `json:"weatherUnavailable"`
	FactsUnavailable     bool `json:"factsUnavailable"`
	TransportUnavailable bool `json:"transportUnavailable"`
	NarrativeUnavailable bool `json:"narrativeUnavailable"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// DayRecord is the flat serialization handed to presentation layers.
type DayRecord struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
	Weather    string     `json:"weather"`
	Budget     int64      `json:"budget"`
}

// DayRecords flattens the itinerary into an ordered list of day records.
func (it *FinalItinerary) DayRecords() []DayRecord {
	records := make([]DayRecord, len(it.Days))
	for i, day := range it.Days {
		records[i] = DayRecord{
			Date:       day.Date.Format("2006-01-02"),
			Activities: day.Activities,
			Weather:    string(day.Weather.Condition),
			Budget:     day.AllocatedBudget,
		}
	}
	return records
}
