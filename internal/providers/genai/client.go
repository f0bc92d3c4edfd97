// internal/providers/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/itinerary"
)

// Client speaks a generateContent-shaped REST contract and implements
// itinerary.Synthesizer. It is strictly non-authoritative: the structured
// plan it narrates is already final.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		// No client-level timeout; the per-call context bounds each attempt.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{
			"provider": "genai",
		}),
	}
}

// Synthesize renders the structured plan as narrative text. Transient
// failures are retried with exponential backoff; the caller falls back to
// the structured plan once the budget is exhausted.
func (c *Client) Synthesize(ctx context.Context, plans []itinerary.DayPlan, req *itinerary.CanonicalPlanRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(plans, req)}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: c.config.MaxTokens,
			Temperature:     c.config.Temperature,
		},
	})
	if err != nil {
		return "", errors.NewInternalError(err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.config.BaseURL, c.config.Model, c.config.APIKey)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", errors.NewAITimeoutError()
			}
		}

		httpReq, reqErr := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
		if reqErr != nil {
			return "", errors.NewInternalError(reqErr)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(httpReq)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			status := resp.StatusCode
			resp.Body.Close()
			resp = nil
			if status == http.StatusTooManyRequests {
				lastErr = errors.NewAIRateLimitedError(fmt.Sprintf("status %d", status))
			} else {
				lastErr = fmt.Errorf("status %d", status)
			}
		}

		if ctx.Err() != nil {
			return "", errors.NewAITimeoutError()
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewAITimeoutError()
		}
		if stdErr, ok := lastErr.(*errors.StandardError); ok {
			return "", stdErr
		}
		// Network failures and 5xx statuses mean the service was unreachable,
		// not that it produced an unusable answer.
		return "", errors.NewAIUnavailableError(lastErr.Error())
	}
	if resp == nil {
		return "", errors.NewAIInvalidResponseError("no successful response after retries")
	}
	defer resp.Body.Close()

	var payload generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.NewAIInvalidResponseError(fmt.Sprintf("decode error: %v", err))
	}

	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", errors.NewAIInvalidResponseError("response contained no candidates")
	}

	text := strings.TrimSpace(payload.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.NewAIInvalidResponseError("response text was empty")
	}

	c.logger.Info("narrative synthesis completed", map[string]interface{}{
		"days":       len(plans),
		"textLength": len(text),
	})

	return text, nil
}

// buildPrompt serializes the finalized plan and trip context into a single
// prompt. The model adds descriptive language only; dates, costs, and
// structure are already decided.
func buildPrompt(plans []itinerary.DayPlan, req *itinerary.CanonicalPlanRequest) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"You are a travel writer. Write a friendly day-by-day narrative for a %d-day trip to %s.",
		len(plans), req.Destination))
	parts = append(parts, fmt.Sprintf("Interests: %s.", strings.Join(req.Interests, ", ")))
	parts = append(parts, fmt.Sprintf("Total budget: %d (smallest currency unit).", req.Budget))
	if req.Accommodation != "" {
		parts = append(parts, fmt.Sprintf("Accommodation preference: %s.", req.Accommodation))
	}
	if req.Dietary != "" {
		parts = append(parts, fmt.Sprintf("Dietary needs: %s.", req.Dietary))
	}

	parts = append(parts, "\nFinalized plan (do not change dates, activities, or budgets):")
	for _, day := range plans {
		parts = append(parts, fmt.Sprintf("\n%s — weather: %s, budget: %d",
			day.Date.Format("2006-01-02"), day.Weather.Condition, day.AllocatedBudget))
		for _, act := range day.Activities {
			line := fmt.Sprintf("- %s (interest: %s, est. cost: %d)", act.Title, act.InterestTag, act.EstimatedCost)
			if act.IndoorAlternative {
				line += " [indoor alternative]"
			}
			if act.Caveat != "" {
				line += fmt.Sprintf(" [note: %s]", act.Caveat)
			}
			parts = append(parts, line)
		}
		if day.Transport != nil {
			parts = append(parts, fmt.Sprintf("- Arrival by %s from %s (est. cost: %d, %d min)",
				day.Transport.Mode, day.Transport.Source, day.Transport.EstimatedCost, day.Transport.DurationMinutes))
		}
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- Describe each day in order, one short paragraph per day")
	parts = append(parts, "- Mention the weather and clothing where relevant")
	parts = append(parts, "- Keep all listed activities and budgets exactly as given")

	return strings.Join(parts, "\n")
}
