package config

import "fmt"

// SentryConfig defines settings for reporting failed replicates to Sentry.
// An empty DSN disables reporting.
type SentryConfig struct {
	DSN         string  `json:"dsn"`
	Environment string  `json:"environment"`
	Release     string  `json:"release"`
	SampleRate  float64 `json:"sample_rate"`
	// MaxEvents caps the replicate failures sent per run; 0 means no cap.
	MaxEvents int `json:"max_events"`
}

// SetDefaults fills zero values.
func (c *SentryConfig) SetDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
}

// Validate checks the sampling settings.
func (c SentryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sentry: sample_rate %g outside [0,1]", c.SampleRate)
	}
	if c.MaxEvents < 0 {
		return fmt.Errorf("sentry: max_events must be >= 0, got %d", c.MaxEvents)
	}
	return nil
}
