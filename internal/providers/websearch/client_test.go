// internal/providers/websearch/client_test.go
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-companion/internal/common/cache"
	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:             baseURL,
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		CacheTTL:            time.Minute,
		MaxResults:          10,
		MinRelevance:        0.2,
		DefaultActivityCost: 2500,
	}
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "Best travel guide for Kyoto temples food",
		buildQuery("Kyoto", []string{"temples", "food"}))
	assert.Equal(t, "Best travel guide for Kyoto",
		buildQuery("Kyoto", nil))
}

func TestClient_ProcessResults(t *testing.T) {
	client := NewClient(testConfig(""), nil, logger.NewNoOpLogger())
	tags := []string{"temples", "food"}

	results := []organicResult{
		{Title: "Top temples in Kyoto", Link: "https://example.com/a", Snippet: "Fushimi Inari and more"},
		{Title: "Top temples in Kyoto", Link: "https://example.com/a", Snippet: "duplicate link"},
		{Title: "Kyoto street food and temples", Link: "https://example.com/b", Snippet: "Nishiki market guide"},
		{Title: "Official Kyoto travel portal", Link: "https://kyoto.example.gov/visit", Snippet: "City guide"},
		{Title: "National museum of Kyoto", Link: "https://example.com/c", Snippet: "Art and history exhibits"},
		{Title: "", Link: "https://example.com/d", Snippet: ""},
	}

	facts := client.processResults(results, tags)

	require.Len(t, facts, 4)

	// One tag matched.
	assert.Equal(t, []string{"temples"}, facts[0].Tags)
	assert.InDelta(t, 0.65, facts[0].Relevance, 1e-9)
	assert.False(t, facts[0].Indoor)
	assert.Equal(t, int64(2500), facts[0].EstimatedCost)

	// Both tags matched.
	assert.Equal(t, []string{"temples", "food"}, facts[1].Tags)
	assert.InDelta(t, 0.80, facts[1].Relevance, 1e-9)

	// Untagged gov result inherits the full tag set plus the authority bonus.
	assert.Equal(t, tags, facts[2].Tags)
	assert.InDelta(t, 0.65, facts[2].Relevance, 1e-9)

	// Museum hint marks the fact indoor.
	assert.True(t, facts[3].Indoor)
}

func TestClient_ProcessResults_RelevanceCutoff(t *testing.T) {
	cfg := testConfig("")
	cfg.MinRelevance = 0.6
	client := NewClient(cfg, nil, logger.NewNoOpLogger())

	facts := client.processResults([]organicResult{
		{Title: "Generic page", Link: "https://example.com/a", Snippet: "nothing relevant"},
		{Title: "Temples of Kyoto", Link: "https://example.com/b", Snippet: "a temples guide"},
	}, []string{"temples"})

	require.Len(t, facts, 1)
	assert.Equal(t, "Temples of Kyoto", facts[0].Title)
}

func TestClient_ProcessResults_CapsAtMaxResults(t *testing.T) {
	cfg := testConfig("")
	cfg.MaxResults = 2
	client := NewClient(cfg, nil, logger.NewNoOpLogger())

	var results []organicResult
	for i := 0; i < 5; i++ {
		results = append(results, organicResult{
			Title:   fmt.Sprintf("Temples guide %d", i),
			Link:    fmt.Sprintf("https://example.com/%d", i),
			Snippet: "temples",
		})
	}

	facts := client.processResults(results, []string{"temples"})
	assert.Len(t, facts, 2)
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "Best travel guide for Kyoto temples", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"organic_results": [
			{"title": "Temples of Kyoto", "link": "https://example.com/a", "snippet": "Fushimi Inari", "source": "Example"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewTestLogger(t))
	facts, err := client.Search(context.Background(), "Kyoto", []string{"temples"})

	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "Temples of Kyoto", facts[0].Title)
	assert.Equal(t, "Example", facts[0].Source)
}

func TestClient_Search_ServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"organic_results": [
			{"title": "Temples of Kyoto", "link": "https://example.com/a", "snippet": "temples"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), store, logger.NewNoOpLogger())

	first, err := client.Search(context.Background(), "Kyoto", []string{"temples"})
	require.NoError(t, err)
	second, err := client.Search(context.Background(), "Kyoto", []string{"temples"})
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, first, second)
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoOpLogger())
	_, err := client.Search(context.Background(), "Kyoto", []string{"temples"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProviderUnavailable, errors.CodeOf(err))
}

func TestClient_Search_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, nil, logger.NewNoOpLogger())

	_, err := client.Search(context.Background(), "Kyoto", []string{"temples"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProviderTimeout, errors.CodeOf(err))
}

func TestIsIndoor(t *testing.T) {
	assert.True(t, isIndoor("the national museum of art"))
	assert.True(t, isIndoor("a hands-on cooking class downtown"))
	assert.False(t, isIndoor("hiking trails and scenic viewpoints"))
}
