package sim

import "fmt"

// Config drives the simulation loop.
type Config struct {
	// TickMS is the simulated length of one tick in milliseconds.
	TickMS int `json:"tick_ms" yaml:"tick_ms"`
	// DurationS is the simulated run length in seconds. Negative runs until
	// the context is canceled.
	DurationS int `json:"duration_s" yaml:"duration_s"`
	// ReplanEveryTicks re-weights the queue by distance to the robot.
	ReplanEveryTicks int `json:"replan_every_ticks" yaml:"replan_every_ticks"`
	// ScanEveryTicks refreshes obstacle and item detections.
	ScanEveryTicks int `json:"scan_every_ticks" yaml:"scan_every_ticks"`
	// SnapshotEveryTicks publishes a Snapshot and state events on the bus.
	SnapshotEveryTicks int `json:"snapshot_every_ticks" yaml:"snapshot_every_ticks"`
	// MaxMoveRetries bounds replans for a blocked task before it is canceled.
	MaxMoveRetries int `json:"max_move_retries" yaml:"max_move_retries"`
	// TaskRateOverride replaces the warehouse arrival rate when positive.
	TaskRateOverride float64 `json:"task_rate_override" yaml:"task_rate_override"`
	// LowBatteryPct is the charge percentage below which the runner injects
	// an urgent charging task.
	LowBatteryPct float64 `json:"low_battery_pct" yaml:"low_battery_pct"`
	// Seed feeds the runner's random source when no source is injected.
	Seed int64 `json:"seed" yaml:"seed"`
	// RealTime paces the loop at one tick per TickMS of wall time.
	RealTime bool `json:"real_time" yaml:"real_time"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.TickMS == 0 {
		c.TickMS = 100
	}
	if c.DurationS == 0 {
		c.DurationS = 300
	}
	if c.ReplanEveryTicks == 0 {
		c.ReplanEveryTicks = 50
	}
	if c.ScanEveryTicks == 0 {
		c.ScanEveryTicks = 5
	}
	if c.SnapshotEveryTicks == 0 {
		c.SnapshotEveryTicks = 10
	}
	if c.MaxMoveRetries == 0 {
		c.MaxMoveRetries = 3
	}
	if c.LowBatteryPct == 0 {
		c.LowBatteryPct = 20
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.TickMS <= 0 {
		return fmt.Errorf("tick_ms must be positive, got %d", c.TickMS)
	}
	if c.ReplanEveryTicks <= 0 || c.ScanEveryTicks <= 0 || c.SnapshotEveryTicks <= 0 {
		return fmt.Errorf("tick cadences must be positive")
	}
	if c.MaxMoveRetries < 0 {
		return fmt.Errorf("max_move_retries must not be negative, got %d", c.MaxMoveRetries)
	}
	if c.TaskRateOverride < 0 {
		return fmt.Errorf("task_rate_override must not be negative, got %v", c.TaskRateOverride)
	}
	if c.LowBatteryPct < 0 || c.LowBatteryPct > 100 {
		return fmt.Errorf("low_battery_pct must be within [0, 100], got %v", c.LowBatteryPct)
	}
	return nil
}
