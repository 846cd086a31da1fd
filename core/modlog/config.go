package modlog

import "fmt"

// Config selects and tunes the modification log backend.
type Config struct {
	// Backend is one of "memory", "jsonl", "sqlite" or "redis".
	Backend string `json:"backend"`
	// Path is the file location for the jsonl and sqlite backends.
	Path string `json:"path"`
	// MaxSizeMB enables rotation of the jsonl backend when positive.
	// Rotated files are kept forever and stay queryable.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups and MaxAgeDays would prune rotated files and must stay 0.
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	RedisURL   string `json:"redis_url"`
	RedisKey   string `json:"redis_key"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "modification_log.jsonl"
		case "sqlite":
			c.Path = "modification_log.db"
		}
	}
	if c.RedisKey == "" {
		c.RedisKey = DefaultRedisKey
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxSizeMB < 0 {
		return fmt.Errorf("modlog: max_size_mb must not be negative")
	}
	if c.MaxBackups != 0 || c.MaxAgeDays != 0 {
		return fmt.Errorf("modlog: max_backups and max_age_days would delete audit records and must be 0")
	}
	switch c.Backend {
	case "memory":
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("modlog: path is required for %s", c.Backend)
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("modlog: redis_url is required")
		}
	default:
		return fmt.Errorf("modlog: unknown backend %s", c.Backend)
	}
	return nil
}

// Open builds the Store described by cfg.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB)
		}
		return NewJSONLStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "redis":
		return NewRedisStore(cfg.RedisURL, cfg.RedisKey)
	default:
		return NewMemoryStore(), nil
	}
}
