package whatif

import "fmt"

// Headway models.
const (
	// HeadwayProportional scales today's Service count inversely with headway.
	HeadwayProportional = "proportional"
	// HeadwayRoundTrip divides the line round trip time by the headway.
	HeadwayRoundTrip = "round_trip"
)

// DefaultMinStandby is the standby reserve kept when min_standby is unset.
const DefaultMinStandby = 3

// Config holds the policy constants of the analyzer.
type Config struct {
	// RiskThreshold follows overrides.risk_threshold so both features judge
	// risk alike. It is not read from the whatif section.
	RiskThreshold float64 `json:"-"`
	HeadwayModel  string  `json:"headway_model"`
	// FleetSize is the total fleet. Zero uses the number of scheduled trains.
	FleetSize int `json:"fleet_size"`
	// MinStandby is nil when unset so an explicit 0 is kept.
	MinStandby       *int    `json:"min_standby"`
	CurrentHeadway   float64 `json:"current_headway"`
	RoundTripMinutes float64 `json:"round_trip_minutes"`
	DefaultHeadway   float64 `json:"default_headway"`
}

// SetDefaults applies the operating constants of the line.
func (c *Config) SetDefaults() {
	if c.RiskThreshold == 0 {
		c.RiskThreshold = 0.3
	}
	if c.HeadwayModel == "" {
		c.HeadwayModel = HeadwayProportional
	}
	if c.MinStandby == nil {
		n := DefaultMinStandby
		c.MinStandby = &n
	}
	if c.CurrentHeadway == 0 {
		c.CurrentHeadway = 7.5
	}
	if c.RoundTripMinutes == 0 {
		c.RoundTripMinutes = 120
	}
	if c.DefaultHeadway == 0 {
		c.DefaultHeadway = 10
	}
}

// Validate checks model names and ranges.
func (c Config) Validate() error {
	if c.HeadwayModel != HeadwayProportional && c.HeadwayModel != HeadwayRoundTrip {
		return fmt.Errorf("whatif: unknown headway_model %s", c.HeadwayModel)
	}
	if c.RiskThreshold <= 0 || c.RiskThreshold > 1 {
		return fmt.Errorf("whatif: risk threshold must be in (0,1], got %v", c.RiskThreshold)
	}
	if c.FleetSize < 0 || c.Standby() < 0 {
		return fmt.Errorf("whatif: fleet_size and min_standby must be non-negative")
	}
	if c.CurrentHeadway <= 0 || c.RoundTripMinutes <= 0 || c.DefaultHeadway <= 0 {
		return fmt.Errorf("whatif: headway constants must be positive")
	}
	return nil
}

// Standby returns the configured standby reserve.
func (c Config) Standby() int {
	if c.MinStandby == nil {
		return DefaultMinStandby
	}
	return *c.MinStandby
}
