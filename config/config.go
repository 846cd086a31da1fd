package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/d1vyadharsh1n1/MetroX/core/metrics"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
	"github.com/d1vyadharsh1n1/MetroX/core/pipeline"
	"github.com/d1vyadharsh1n1/MetroX/core/prediction"
	"github.com/d1vyadharsh1n1/MetroX/core/whatif"
	"github.com/d1vyadharsh1n1/MetroX/infra/history"
	"github.com/d1vyadharsh1n1/MetroX/infra/mqtt"
	"github.com/d1vyadharsh1n1/MetroX/infra/tracing"
	"github.com/d1vyadharsh1n1/MetroX/simulator"
)

// EnvPrefix marks environment overrides, e.g. K_HTTP__ADDR=":8080".
const EnvPrefix = "K_"

type Config struct {
	HTTP      HTTPConfig        `json:"http"`
	Pipeline  pipeline.Config   `json:"pipeline"`
	Simulator simulator.Config  `json:"simulator"`
	Oracle    prediction.Config `json:"oracle"`
	Planner   PlannerConfig     `json:"planner"`
	Overrides override.Config   `json:"overrides"`
	WhatIf    whatif.Config     `json:"whatif"`
	ModLog    modlog.Config     `json:"modlog"`
	History   history.Config    `json:"history"`
	Metrics   metrics.Config    `json:"metrics"`
	MQTT      mqtt.Config       `json:"mqtt"`
	Sentry    SentryConfig      `json:"sentry"`
	Tracing   tracing.Config    `json:"tracing"`
	Logging   LoggingConfig     `json:"logging"`
}

// LoadDotEnv loads the first .env found in the working directory or its
// parents. Variables already set win.
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

// Load reads the YAML or JSON file at path, applies K_ environment
// overrides, then defaults and validation. An empty path loads defaults
// and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath returns path when it exists, otherwise "".
func DefaultPath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.HTTP.SetDefaults()
	c.Simulator.SetDefaults()
	c.Planner.SetDefaults()
	c.Overrides.SetDefaults()
	c.WhatIf.RiskThreshold = c.Overrides.RiskThreshold
	c.WhatIf.SetDefaults()
	c.ModLog.SetDefaults()
	c.History.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
	c.Tracing.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"http", c.HTTP.Validate},
		{"pipeline", c.Pipeline.Validate},
		{"simulator", c.Simulator.Validate},
		{"planner", c.Planner.Validate},
		{"overrides", c.Overrides.Validate},
		{"whatif", c.WhatIf.Validate},
		{"modlog", c.ModLog.Validate},
		{"history", c.History.Validate},
		{"mqtt", c.MQTT.Validate},
		{"sentry", c.Sentry.Validate},
		{"tracing", c.Tracing.Validate},
		{"logging", c.Logging.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("config %s: %w", ch.name, err)
		}
	}
	return nil
}
