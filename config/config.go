// Package config loads the root configuration from file and environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/warebotics/warebot/core/metrics"
	"github.com/warebotics/warebot/core/planner"
	"github.com/warebotics/warebot/core/robot"
	"github.com/warebotics/warebot/core/scheduler"
	"github.com/warebotics/warebot/core/tasklog"
	"github.com/warebotics/warebot/core/vision"
	"github.com/warebotics/warebot/core/warehouse"
	"github.com/warebotics/warebot/infra/monitoring"
	"github.com/warebotics/warebot/infra/mqtt"
	"github.com/warebotics/warebot/infra/web"
	"github.com/warebotics/warebot/sim"
)

// Config is the root of every tunable in the service. Each section owns its
// defaults and validation.
type Config struct {
	Warehouse warehouse.Config  `json:"warehouse"`
	Robot     robot.Config      `json:"robot"`
	Planner   planner.Config    `json:"planner"`
	Scheduler scheduler.Config  `json:"scheduler"`
	Vision    vision.Config     `json:"vision"`
	Sim       sim.Config        `json:"sim"`
	Metrics   metrics.Config    `json:"metrics"`
	TaskLog   tasklog.Config    `json:"tasklog"`
	MQTT      mqtt.Config       `json:"mqtt"`
	Web       web.Config        `json:"web"`
	Sentry    monitoring.Config `json:"sentry"`
}

// SetDefaults applies each section's defaults.
func (c *Config) SetDefaults() {
	c.Warehouse.SetDefaults()
	c.Robot.SetDefaults()
	c.Planner.SetDefaults()
	c.Scheduler.SetDefaults()
	c.Vision.SetDefaults()
	c.Sim.SetDefaults()
	c.Metrics.SetDefaults()
	c.TaskLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Web.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		err  error
	}{
		{"warehouse", c.Warehouse.Validate()},
		{"robot", c.Robot.Validate()},
		{"planner", c.Planner.Validate()},
		{"scheduler", c.Scheduler.Validate()},
		{"vision", c.Vision.Validate()},
		{"sim", c.Sim.Validate()},
		{"metrics", c.Metrics.Validate()},
		{"tasklog", c.TaskLog.Validate()},
		{"mqtt", c.MQTT.Validate()},
		{"web", c.Web.Validate()},
		{"sentry", c.Sentry.Validate()},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return fmt.Errorf("config %s: %w", ch.name, ch.err)
		}
	}
	return nil
}

// Default returns a configuration with every section at its defaults.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the file at path (yaml or json by extension), applies WB_*
// environment overrides (double underscore separates nesting levels) and
// returns the defaulted, validated configuration.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
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
	if err := k.Load(env.Provider("WB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "wb_")
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
