package planner

import "fmt"

// Config defines planner settings.
type Config struct {
	// MaxExpansions bounds the number of A* expansions per call. Zero means
	// unbounded; exceeding the bound fails the call like an unreachable goal.
	MaxExpansions int `json:"max_expansions" yaml:"max_expansions"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	// MaxExpansions zero value means unbounded and is a valid default.
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxExpansions < 0 {
		return fmt.Errorf("max_expansions must not be negative, got %d", c.MaxExpansions)
	}
	return nil
}
