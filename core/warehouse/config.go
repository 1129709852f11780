package warehouse

import (
	"fmt"

	"github.com/warebotics/warebot/core/model"
)

// Config defines the synthetic warehouse layout and content.
type Config struct {
	WidthM            float64     `json:"width" yaml:"width"`
	LengthM           float64     `json:"length" yaml:"length"`
	NumRacks          int         `json:"num_racks" yaml:"num_racks"`
	RackLengthM       float64     `json:"rack_length" yaml:"rack_length"`
	RackWidthM        float64     `json:"rack_width" yaml:"rack_width"`
	AisleWidthM       float64     `json:"aisle_width" yaml:"aisle_width"`
	NumItems          int         `json:"num_items" yaml:"num_items"`
	ItemTypes         int         `json:"item_types" yaml:"item_types"`
	ObstacleDensity   float64     `json:"obstacle_density" yaml:"obstacle_density"`
	ChargingStations  int         `json:"charging_stations" yaml:"charging_stations"`
	RobotStart        model.Point `json:"robot_start" yaml:"robot_start"`
	TaskRatePerSecond float64     `json:"task_rate_per_second" yaml:"task_rate_per_second"`
	GridResolution    float64     `json:"grid_resolution" yaml:"grid_resolution"` // m per cell
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.WidthM == 0 {
		c.WidthM = 20.0
	}
	if c.LengthM == 0 {
		c.LengthM = 30.0
	}
	if c.NumRacks == 0 {
		c.NumRacks = 10
	}
	if c.RackLengthM == 0 {
		c.RackLengthM = 5.0
	}
	if c.RackWidthM == 0 {
		c.RackWidthM = 1.0
	}
	if c.AisleWidthM == 0 {
		c.AisleWidthM = 2.0
	}
	if c.NumItems == 0 {
		c.NumItems = 100
	}
	if c.ItemTypes == 0 {
		c.ItemTypes = 10
	}
	if c.ObstacleDensity == 0 {
		c.ObstacleDensity = 0.05
	}
	if c.ChargingStations == 0 {
		c.ChargingStations = 2
	}
	if c.RobotStart == (model.Point{}) {
		c.RobotStart = model.Point{X: 1, Y: 1}
	}
	if c.TaskRatePerSecond == 0 {
		c.TaskRatePerSecond = 0.1
	}
	if c.GridResolution == 0 {
		c.GridResolution = 0.1
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.WidthM <= 0 || c.LengthM <= 0 {
		return fmt.Errorf("warehouse dimensions must be positive, got %vx%v", c.WidthM, c.LengthM)
	}
	if c.GridResolution <= 0 {
		return fmt.Errorf("grid_resolution must be positive, got %v", c.GridResolution)
	}
	if c.ObstacleDensity < 0 || c.ObstacleDensity > 1 {
		return fmt.Errorf("obstacle_density must be in [0,1], got %v", c.ObstacleDensity)
	}
	if c.NumRacks < 0 || c.NumItems < 0 || c.ChargingStations < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	if c.RackWidthM+c.AisleWidthM <= 0 {
		return fmt.Errorf("rack_width plus aisle_width must be positive")
	}
	rowSpan := float64(c.NumRacks/2) * (c.RackWidthM + c.AisleWidthM)
	if rowSpan > c.WidthM {
		return fmt.Errorf("rack row span %v m exceeds warehouse width %v m", rowSpan, c.WidthM)
	}
	return nil
}
