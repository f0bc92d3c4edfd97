// internal/providers/genai/client_test.go
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/itinerary"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gemini-1.5-flash",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

func testPlans() ([]itinerary.DayPlan, *itinerary.CanonicalPlanRequest) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	plans := []itinerary.DayPlan{
		{
			Date: date,
			Activities: []itinerary.Activity{
				{Title: "Fushimi Inari", InterestTag: "temples", EstimatedCost: 20000},
			},
			Weather:         itinerary.WeatherDay{Date: date, Condition: itinerary.ConditionClear},
			AllocatedBudget: 30000,
			Transport: &itinerary.TransportOption{
				Mode: itinerary.ModeTrain, EstimatedCost: 15000, DurationMinutes: 90,
				Source: "Osaka", Destination: "Kyoto",
			},
		},
		{
			Date: date.AddDate(0, 0, 1),
			Activities: []itinerary.Activity{
				{Title: "Kyoto cooking class", InterestTag: "food", EstimatedCost: 12000, IndoorAlternative: true},
			},
			Weather:         itinerary.WeatherDay{Date: date.AddDate(0, 0, 1), Condition: itinerary.ConditionRain},
			AllocatedBudget: 24000,
		},
	}
	req := &itinerary.CanonicalPlanRequest{
		Destination: "Kyoto",
		Source:      "Osaka",
		Budget:      54000,
		Interests:   []string{"temples", "food"},
	}
	return plans, req
}

func narrativeResponse(text string) string {
	return fmt.Sprintf(`{"candidates": [{"content": {"parts": [{"text": %q}]}}]}`, text)
}

func TestClient_Synthesize(t *testing.T) {
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, narrativeResponse("Day one takes you to Fushimi Inari."))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewTestLogger(t))
	plans, req := testPlans()

	text, err := client.Synthesize(context.Background(), plans, req)

	require.NoError(t, err)
	assert.Equal(t, "Day one takes you to Fushimi Inari.", text)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Kyoto")
	assert.Contains(t, prompt, "Fushimi Inari")
	assert.Contains(t, prompt, "do not change dates, activities, or budgets")
	assert.Equal(t, 2048, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestClient_Synthesize_RetriesTransientFailure(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, narrativeResponse("A rainy second day indoors."))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewNoOpLogger())
	plans, req := testPlans()

	text, err := client.Synthesize(context.Background(), plans, req)

	require.NoError(t, err)
	assert.Equal(t, "A rainy second day indoors.", text)
	assert.Equal(t, 2, hits)
}

func TestClient_Synthesize_RateLimitExhausted(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewNoOpLogger())
	plans, req := testPlans()

	_, err := client.Synthesize(context.Background(), plans, req)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAIRateLimited, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, 3, hits, "initial attempt plus MaxRetries")
}

func TestClient_Synthesize_ServerErrorExhausted(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewNoOpLogger())
	plans, req := testPlans()

	_, err := client.Synthesize(context.Background(), plans, req)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAIUnavailable, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, 3, hits)
}

func TestClient_Synthesize_UnreachableHost(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"), logger.NewNoOpLogger())
	plans, req := testPlans()

	_, err := client.Synthesize(context.Background(), plans, req)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAIUnavailable, errors.CodeOf(err))
}

func TestClient_Synthesize_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context; otherwise
		// server.Close deadlocks waiting for this handler.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, logger.NewNoOpLogger())
	plans, req := testPlans()

	_, err := client.Synthesize(context.Background(), plans, req)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAITimeout, errors.CodeOf(err))
}

func TestClient_Synthesize_EmptyCandidates(t *testing.T) {
	responses := []string{
		`{"candidates": []}`,
		`{"candidates": [{"content": {"parts": [{"text": "   "}]}}]}`,
		`not json`,
	}

	for _, body := range responses {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))

		client := NewClient(testConfig(server.URL), logger.NewNoOpLogger())
		plans, req := testPlans()

		_, err := client.Synthesize(context.Background(), plans, req)
		server.Close()

		require.Error(t, err, "body: %s", body)
		assert.Equal(t, errors.ErrCodeAIInvalidResponse, errors.CodeOf(err), "body: %s", body)
	}
}

func TestBuildPrompt(t *testing.T) {
	plans, req := testPlans()
	prompt := buildPrompt(plans, req)

	assert.Contains(t, prompt, "2-day trip to Kyoto")
	assert.Contains(t, prompt, "Interests: temples, food.")
	assert.Contains(t, prompt, "2026-03-10")
	assert.Contains(t, prompt, "Fushimi Inari (interest: temples, est. cost: 20000)")
	assert.Contains(t, prompt, "[indoor alternative]")
	assert.Contains(t, prompt, "Arrival by train from Osaka")
	assert.Contains(t, prompt, "Keep all listed activities and budgets exactly as given")
}
