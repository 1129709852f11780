package tasklog

import (
	"context"
	"fmt"
)

// Config selects and parameterizes the task log backend.
type Config struct {
	Backend string `json:"backend" yaml:"backend"` // none, jsonl, rotating, sqlite, mongo
	Path    string `json:"path" yaml:"path"`

	// Rotation limits, used by the rotating backend.
	MaxSizeMB  int `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"`

	MongoURI        string `json:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `json:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `json:"mongo_collection" yaml:"mongo_collection"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "tasklog.jsonl"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 7
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "warebot"
	}
	if c.MongoCollection == "" {
		c.MongoCollection = "task_logs"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Backend {
	case "none", "jsonl", "rotating", "sqlite", "mongo":
	default:
		return fmt.Errorf("unknown tasklog backend %q", c.Backend)
	}
	if c.Backend == "mongo" && c.MongoURI == "" {
		return fmt.Errorf("tasklog backend mongo requires mongo_uri")
	}
	return nil
}

// Open builds the store selected by the configuration.
func Open(ctx context.Context, cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "none":
		return Nop{}, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "mongo":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		return nil, fmt.Errorf("unknown tasklog backend %q", cfg.Backend)
	}
}
