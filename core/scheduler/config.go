package scheduler

import "fmt"

// Config defines scheduling parameters.
type Config struct {
	// MaxQueueSize caps the number of queued tasks. Admission fails once the
	// queue is full. Zero selects the default.
	MaxQueueSize int `json:"max_queue_size" yaml:"max_queue_size"`
	// ReplanDistanceWeight scales the distance factor applied by Replan.
	ReplanDistanceWeight float64 `json:"replan_distance_weight" yaml:"replan_distance_weight"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = 100
	}
	if c.ReplanDistanceWeight == 0 {
		c.ReplanDistanceWeight = 0.1
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxQueueSize < 0 {
		return fmt.Errorf("max_queue_size must not be negative, got %d", c.MaxQueueSize)
	}
	if c.ReplanDistanceWeight < 0 {
		return fmt.Errorf("replan_distance_weight must not be negative, got %v", c.ReplanDistanceWeight)
	}
	return nil
}
