package override

import "fmt"

// DefaultRiskThreshold is the failure risk above which forcing a train
// into service requires confirmation.
const DefaultRiskThreshold = 0.3

// Config tunes the override rules.
type Config struct {
	RiskThreshold float64 `json:"risk_threshold"`
	// BlockIBLRelease refuses to move an IBL train to Service or Standby.
	BlockIBLRelease bool `json:"block_ibl_release"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.RiskThreshold == 0 {
		c.RiskThreshold = DefaultRiskThreshold
	}
}

// Validate checks the threshold range.
func (c Config) Validate() error {
	if c.RiskThreshold <= 0 || c.RiskThreshold > 1 {
		return fmt.Errorf("overrides: risk_threshold must be in (0,1], got %v", c.RiskThreshold)
	}
	return nil
}
