package pipeline

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds pipeline options.
type Config struct {
	// Interactive is the default for runs started without an explicit mode.
	Interactive bool `json:"interactive"`
	// Cron schedules unattended runs, e.g. "0 2 * * *". Empty disables it.
	Cron string `json:"cron"`
	// InputTimeoutSeconds fails a run whose prompt stays unanswered. Zero
	// waits forever.
	InputTimeoutSeconds int `json:"input_timeout_seconds"`
	// ExportPath receives the final schedule as CSV when set.
	ExportPath string `json:"export_path"`
}

// InputTimeout returns the prompt timeout as a duration.
func (c Config) InputTimeout() time.Duration {
	return time.Duration(c.InputTimeoutSeconds) * time.Second
}

func (c Config) Validate() error {
	if c.InputTimeoutSeconds < 0 {
		return fmt.Errorf("input_timeout_seconds must not be negative")
	}
	if c.Cron != "" {
		if _, err := cron.ParseStandard(c.Cron); err != nil {
			return fmt.Errorf("invalid cron %q: %w", c.Cron, err)
		}
	}
	return nil
}
