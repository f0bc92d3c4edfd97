// internal/itinerary/request.go
package itinerary

import (
	"fmt"
	"strings"
	"time"

	"travel-companion/internal/common/errors"
)

// TripRequest is what the caller submits. Immutable once validated.
type TripRequest struct {
	Destination string   `json:"destination"`
	Source      string   `json:"source,omitempty"` // required only when transport is wanted
	StartDate   string   `json:"startDate"`        // 2006-01-02
	Duration    int      `json:"duration"`         // days
	Budget      int64    `json:"budget"`           // smallest currency unit, non-negative
	Interests   []string `json:"interests"`

	// Carried into the synthesis prompt only; no structural effect.
	Accommodation string `json:"accommodation,omitempty"`
	Dietary       string `json:"dietary,omitempty"`
}

// CanonicalPlanRequest is the normalized request used by the rest of the
// pipeline. Owned solely by one run; never persisted.
type CanonicalPlanRequest struct {
	Destination   string
	Source        string
	DateRange     []time.Time // one entry per trip day, ascending
	Budget        int64
	Interests     []string // case-folded, deduplicated, insertion order kept
	Accommodation string
	Dietary       string
}

// Duration returns the trip length in days.
func (r *CanonicalPlanRequest) Duration() int {
	return len(r.DateRange)
}

// WantsTransport reports whether a source location was provided.
func (r *CanonicalPlanRequest) WantsTransport() bool {
	return r.Source != ""
}

// Evaluator validates and normalizes trip requests. Pure; safe for
// concurrent use.
type Evaluator struct {
	maxDurationDays int
	graceWindow     time.Duration
	location        *time.Location
	now             func() time.Time
}

// NewEvaluator builds an Evaluator. loc is the canonical calendar timezone
// for date arithmetic (destination-local by convention, UTC by default).
func NewEvaluator(maxDurationDays int, graceWindow time.Duration, loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{
		maxDurationDays: maxDurationDays,
		graceWindow:     graceWindow,
		location:        loc,
		now:             time.Now,
	}
}

// Evaluate turns a TripRequest into a CanonicalPlanRequest or fails with a
// validation StandardError.
func (e *Evaluator) Evaluate(req TripRequest) (*CanonicalPlanRequest, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, errors.NewValidationError("destination", "destination is required")
	}

	if req.Duration <= 0 {
		return nil, errors.NewValidationError("duration", "duration must be at least 1 day")
	}
	if req.Duration > e.maxDurationDays {
		return nil, errors.NewValidationError("duration",
			fmt.Sprintf("duration exceeds maximum of %d days", e.maxDurationDays))
	}

	if req.Budget < 0 {
		return nil, errors.NewValidationError("budget", "budget must be non-negative")
	}

	start, err := time.ParseInLocation("2006-01-02", req.StartDate, e.location)
	if err != nil {
		return nil, errors.NewValidationError("startDate",
			fmt.Sprintf("startDate %q is not a valid YYYY-MM-DD date", req.StartDate))
	}

	today := e.today()
	if start.Add(e.graceWindow).Before(today) {
		return nil, errors.NewValidationError("startDate", "startDate is in the past")
	}

	interests := normalizeInterests(req.Interests)
	if len(interests) == 0 {
		return nil, errors.NewValidationError("interests", "at least one interest is required")
	}

	dateRange := make([]time.Time, req.Duration)
	for i := 0; i < req.Duration; i++ {
		dateRange[i] = start.AddDate(0, 0, i)
	}

	return &CanonicalPlanRequest{
		Destination:   strings.TrimSpace(req.Destination),
		Source:        strings.TrimSpace(req.Source),
		DateRange:     dateRange,
		Budget:        req.Budget,
		Interests:     interests,
		Accommodation: strings.TrimSpace(req.Accommodation),
		Dietary:       strings.TrimSpace(req.Dietary),
	}, nil
}

func (e *Evaluator) today() time.Time {
	now := e.now().In(e.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.location)
}

// normalizeInterests case-folds and deduplicates, keeping insertion order.
func normalizeInterests(interests []string) []string {
	seen := make(map[string]bool, len(interests))
	out := make([]string, 0, len(interests))
	for _, raw := range interests {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
