package robot

import "fmt"

// Config defines the physical parameters of the robot.
type Config struct {
	MaxSpeed             float64 `json:"max_speed" yaml:"max_speed"`                           // m/s
	MaxAcceleration      float64 `json:"max_acceleration" yaml:"max_acceleration"`             // m/s^2
	BatteryCapacity      float64 `json:"battery_capacity" yaml:"battery_capacity"`             // mAh
	BatteryDischargeRate float64 `json:"battery_discharge_rate" yaml:"battery_discharge_rate"` // mAh/s at full speed
	SensorRange          float64 `json:"sensor_range" yaml:"sensor_range"`                     // m
	GripperCapacityKg    float64 `json:"gripper_capacity_kg" yaml:"gripper_capacity_kg"`
	GripperCycleSeconds  float64 `json:"gripper_cycle_seconds" yaml:"gripper_cycle_seconds"`
	Width                float64 `json:"width" yaml:"width"`
	Length               float64 `json:"length" yaml:"length"`
	Height               float64 `json:"height" yaml:"height"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.MaxSpeed == 0 {
		c.MaxSpeed = 1.5
	}
	if c.MaxAcceleration == 0 {
		c.MaxAcceleration = 0.5
	}
	if c.BatteryCapacity == 0 {
		c.BatteryCapacity = 10000
	}
	if c.BatteryDischargeRate == 0 {
		c.BatteryDischargeRate = 100
	}
	if c.SensorRange == 0 {
		c.SensorRange = 5.0
	}
	if c.GripperCapacityKg == 0 {
		c.GripperCapacityKg = 5.0
	}
	if c.GripperCycleSeconds == 0 {
		c.GripperCycleSeconds = 1.0
	}
	if c.Width == 0 {
		c.Width = 0.5
	}
	if c.Length == 0 {
		c.Length = 0.7
	}
	if c.Height == 0 {
		c.Height = 0.4
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %v", c.MaxSpeed)
	}
	if c.BatteryCapacity <= 0 {
		return fmt.Errorf("battery_capacity must be positive, got %v", c.BatteryCapacity)
	}
	if c.BatteryDischargeRate < 0 {
		return fmt.Errorf("battery_discharge_rate must not be negative, got %v", c.BatteryDischargeRate)
	}
	if c.SensorRange <= 0 {
		return fmt.Errorf("sensor_range must be positive, got %v", c.SensorRange)
	}
	if c.GripperCapacityKg <= 0 {
		return fmt.Errorf("gripper_capacity_kg must be positive, got %v", c.GripperCapacityKg)
	}
	return nil
}
