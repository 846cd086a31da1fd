package config

import (
	"github.com/d1vyadharsh1n1/MetroX/core/scheduler"
)

// PlannerConfig holds the planning policy inline or points to a policy
// file, which takes precedence.
type PlannerConfig struct {
	PolicyFile string           `json:"policy_file"`
	Policy     scheduler.Policy `json:"policy"`
}

func (c *PlannerConfig) SetDefaults() { c.Policy.SetDefaults() }

func (c PlannerConfig) Validate() error {
	if c.PolicyFile != "" {
		return nil
	}
	return c.Policy.Validate()
}

// Resolve returns the effective policy.
func (c PlannerConfig) Resolve() (scheduler.Policy, error) {
	if c.PolicyFile != "" {
		return scheduler.LoadPolicy(c.PolicyFile)
	}
	return c.Policy, nil
}
