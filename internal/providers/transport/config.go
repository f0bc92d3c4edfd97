// internal/providers/transport/config.go
package transport

import "time"

type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}
