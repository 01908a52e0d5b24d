// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import (
	"time"

	"application-workers/internal/lifecycle"
)

type Config struct {
	Timeout time.Duration
	// Applications created before ReviewCycleStart do not block a new one.
	ReviewCycleStart time.Time
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		ReviewCycleStart: lifecycle.DefaultReviewCycleStart,
	}
}
