package history

import (
	"fmt"

	"github.com/d1vyadharsh1n1/MetroX/core/history"
)

// Config selects the history backend.
type Config struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "metrox_history.db"
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case "", "memory", "sqlite":
		return nil
	default:
		return fmt.Errorf("unknown history backend: %s", c.Backend)
	}
}

// Open returns the store configured by cfg.
func Open(cfg Config) (history.Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == "sqlite" {
		return NewSQLiteStore(cfg.Path)
	}
	return history.NewMemoryStore(), nil
}
