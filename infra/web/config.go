package web

import "fmt"

// Config defines the visualization server settings.
type Config struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("web: addr must not be empty")
	}
	return nil
}
