// internal/providers/websearch/config.go
package websearch

import "time"

type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	CacheTTL     time.Duration
	MaxResults   int
	MinRelevance float64
	// DefaultActivityCost is the cost estimate assigned to a fact when no
	// price signal is found in the snippet, in the smallest currency unit.
	DefaultActivityCost int64
}
