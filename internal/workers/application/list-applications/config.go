// internal/workers/application/list-applications/config.go
package listapplications

import "time"

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

type Config struct {
	Timeout         time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     MaxPageSize,
	}
}
