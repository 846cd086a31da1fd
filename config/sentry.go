package config

import (
	"fmt"
	"os"
)

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

// SetDefaults tags events with APP_ENV when no environment is set.
func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = os.Getenv("APP_ENV")
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.Release == "" {
		c.Release = "metrox@dev"
	}
}

func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be within [0,1], got %g", c.TracesSampleRate)
	}
	return nil
}
