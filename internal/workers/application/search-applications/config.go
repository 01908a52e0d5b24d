// internal/workers/application/search-applications/config.go
package searchapplications

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Index:   "applications",
	}
}
