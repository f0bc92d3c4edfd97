// internal/providers/websearch/client.go
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"travel-companion/internal/common/cache"
	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/common/metrics"
	"travel-companion/internal/itinerary"
)

const providerName = "websearch"

var whitespaceRE = regexp.MustCompile(`\s+`)

// indoorHints classify a result as an indoor activity candidate.
var indoorHints = []string{
	"museum", "gallery", "indoor", "theater", "theatre", "aquarium",
	"cooking class", "spa", "market hall", "workshop", "exhibition",
}

// Client fetches destination facts via web search. It implements
// itinerary.FactProvider.
type Client struct {
	config *Config
	client *http.Client
	cache  cache.Cache
	logger logger.Logger
}

func NewClient(config *Config, store cache.Cache, log logger.Logger) *Client {
	if store == nil {
		store = cache.NewNoOp()
	}
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		cache: store,
		logger: log.With(map[string]interface{}{
			"provider": providerName,
		}),
	}
}

// Search returns an unordered set of EnrichmentFacts for the destination,
// each tied to the interest tags found in its text.
func (c *Client) Search(ctx context.Context, destination string, tags []string) ([]itinerary.EnrichmentFact, error) {
	key := cache.SearchKey(destination, tags)
	if cached, ok, _ := c.cache.Get(ctx, key); ok {
		var facts []itinerary.EnrichmentFact
		if err := json.Unmarshal([]byte(cached), &facts); err == nil {
			metrics.CacheHits.WithLabelValues(providerName).Inc()
			return facts, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(providerName).Inc()

	query := buildQuery(destination, tags)
	searchURL := c.buildSearchURL(query)

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, errors.NewProviderUnavailableError(providerName, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, errors.NewProviderTimeoutError(providerName)
		}
		return nil, errors.NewProviderUnavailableError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewProviderUnavailableError(providerName,
			fmt.Errorf("search API returned %d", resp.StatusCode))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewProviderUnavailableError(providerName, err)
	}

	facts := c.processResults(payload.OrganicResults, tags)

	if encoded, err := json.Marshal(facts); err == nil && ctx.Err() == nil {
		_ = c.cache.Set(context.WithoutCancel(ctx), key, string(encoded), c.config.CacheTTL)
	}

	c.logger.Info("web search completed", map[string]interface{}{
		"query":     query,
		"factCount": len(facts),
	})

	return facts, nil
}

func buildQuery(destination string, tags []string) string {
	query := fmt.Sprintf("Best travel guide for %s %s", destination, strings.Join(tags, " "))
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(query), " ")
}

func (c *Client) buildSearchURL(query string) string {
	baseURL, _ := url.Parse(c.config.BaseURL + "/search")
	params := url.Values{}
	params.Add("engine", "google")
	params.Add("q", query)
	params.Add("api_key", c.config.APIKey)
	params.Add("num", fmt.Sprintf("%d", c.config.MaxResults))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

// processResults dedupes by URL, scores relevance, ties each fact to the
// interest tags appearing in its text, and drops low-relevance noise.
func (c *Client) processResults(results []organicResult, tags []string) []itinerary.EnrichmentFact {
	seen := make(map[string]bool)
	facts := make([]itinerary.EnrichmentFact, 0, len(results))

	for _, item := range results {
		if item.Snippet == "" && item.Title == "" {
			continue
		}
		if seen[item.Link] {
			continue
		}
		seen[item.Link] = true

		text := strings.ToLower(item.Title + " " + item.Snippet)

		matched := make([]string, 0, len(tags))
		for _, tag := range tags {
			if strings.Contains(text, tag) {
				matched = append(matched, tag)
			}
		}

		relevance := 0.5 + 0.15*float64(len(matched))
		if strings.Contains(item.Link, ".gov") || strings.Contains(item.Link, ".edu") {
			relevance += 0.1
		}
		if strings.Contains(strings.ToLower(item.Title), "official") {
			relevance += 0.05
		}
		if relevance > 1.0 {
			relevance = 1.0
		}
		if relevance < c.config.MinRelevance {
			continue
		}

		// Untagged facts still rank against the day's rotating tag; they
		// inherit the full tag set so no interest is starved.
		if len(matched) == 0 {
			matched = tags
		}

		facts = append(facts, itinerary.EnrichmentFact{
			Snippet:       item.Snippet,
			Title:         item.Title,
			Source:        sourceOf(item),
			Tags:          matched,
			Relevance:     relevance,
			Indoor:        isIndoor(text),
			EstimatedCost: c.config.DefaultActivityCost,
		})

		if len(facts) >= c.config.MaxResults {
			break
		}
	}

	return facts
}

func sourceOf(item organicResult) string {
	if item.Source != "" {
		return item.Source
	}
	return item.Link
}

func isIndoor(text string) bool {
	for _, hint := range indoorHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return false
}
