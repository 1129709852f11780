package robot

import (
	"math"

	"github.com/warebotics/warebot/core/model"
)

// Status is the robot activity state.
type Status int

const (
	StatusIdle Status = iota
	StatusMoving
	StatusPicking
	StatusPlacing
	StatusCharging
	StatusBlocked
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMoving:
		return "moving"
	case StatusPicking:
		return "picking"
	case StatusPlacing:
		return "placing"
	case StatusCharging:
		return "charging"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Robot is a kinematic point-mass warehouse robot. It is owned by a single
// simulation loop and is not safe for concurrent use; consumers read its state
// through published snapshots.
type Robot struct {
	cfg         Config
	position    model.Point
	orientation float64 // radians, 0 east
	velocity    model.Point
	gripper     *Gripper
	battery     float64 // mAh remaining
	status      Status
	path        []model.Point

	distance  float64
	energy    float64
	completed int
	collided  int
	elapsed   float64 // simulated seconds
}

// New returns an idle robot at start with a full battery. Zero config fields
// fall back to defaults.
func New(cfg Config, start model.Point) *Robot {
	cfg.SetDefaults()
	return &Robot{
		cfg:      cfg,
		position: start,
		gripper:  NewGripper(cfg.GripperCapacityKg),
		battery:  cfg.BatteryCapacity,
		status:   StatusIdle,
	}
}

// Config returns the robot parameters.
func (r *Robot) Config() Config { return r.cfg }

// Position returns the current position in meters.
func (r *Robot) Position() model.Point { return r.position }

// Orientation returns the heading in radians, 0 pointing east.
func (r *Robot) Orientation() float64 { return r.orientation }

// Status returns the current activity state.
func (r *Robot) Status() Status { return r.status }

// Battery returns the remaining charge in mAh.
func (r *Robot) Battery() float64 { return r.battery }

// BatteryPct returns the remaining charge as a percentage.
func (r *Robot) BatteryPct() float64 {
	return r.battery / r.cfg.BatteryCapacity * 100
}

// Load returns the item currently held, nil when empty.
func (r *Robot) Load() *model.Item { return r.gripper.Holding() }

// Gripper returns the robot's gripper.
func (r *Robot) Gripper() *Gripper { return r.gripper }

// Path returns the waypoints the robot is following.
func (r *Robot) Path() []model.Point { return r.path }

// SetPath replaces the waypoint list the robot is following.
func (r *Robot) SetPath(path []model.Point) { r.path = path }

// Advance accounts dt seconds of simulated time, regardless of activity.
func (r *Robot) Advance(dt float64) { r.elapsed += dt }

// MoveToward advances one kinematic step of dt seconds toward target and
// reports whether the target has been reached. The step speed is capped at
// MaxSpeed and scaled down on the final approach so the robot never
// overshoots. Battery drain is proportional to the speed fraction.
func (r *Robot) MoveToward(target model.Point, dt float64) bool {
	const arrive = 0.01

	dx := target.X - r.position.X
	dy := target.Y - r.position.Y
	dist := math.Hypot(dx, dy)
	if dist < arrive {
		r.velocity = model.Point{}
		return true
	}

	speed := r.cfg.MaxSpeed
	if dist/dt < speed {
		speed = dist / dt
	}
	step := speed * dt

	r.orientation = math.Atan2(dy, dx)
	r.position.X += dx / dist * step
	r.position.Y += dy / dist * step
	r.velocity = model.Point{X: dx / dist * speed, Y: dy / dist * speed}
	r.status = StatusMoving

	r.distance += step
	drain := r.cfg.BatteryDischargeRate * (speed / r.cfg.MaxSpeed) * dt
	r.energy += drain
	r.battery -= drain
	if r.battery < 0 {
		r.battery = 0
	}

	return dist-step < arrive
}

// Pick grasps the item. It fails when already loaded or the gripper refuses.
func (r *Robot) Pick(item *model.Item) bool {
	if r.Load() != nil {
		return false
	}
	r.status = StatusPicking
	return r.gripper.Grasp(item)
}

// Place drops the held item at location. It fails when nothing is held.
func (r *Robot) Place(location model.Point) bool {
	if r.Load() == nil {
		return false
	}
	r.status = StatusPlacing
	return r.gripper.Release(location)
}

// Charge refills the battery to capacity.
func (r *Robot) Charge() bool {
	r.status = StatusCharging
	r.battery = r.cfg.BatteryCapacity
	return true
}

// ExecuteTask performs the action of a task the robot has arrived at. A
// successful execution counts toward the completed-task metric.
func (r *Robot) ExecuteTask(task model.Task) bool {
	var ok bool
	switch task.Type {
	case model.TaskPick:
		ok = r.Pick(task.Item)
	case model.TaskPlace:
		if task.Location == nil {
			return false
		}
		ok = r.Place(*task.Location)
	case model.TaskCharge:
		ok = r.Charge()
	default:
		return false
	}
	if ok {
		r.completed++
	}
	return ok
}

// MarkBlocked flags the robot as blocked by an obstacle and counts the near
// collision.
func (r *Robot) MarkBlocked() {
	r.status = StatusBlocked
	r.collided++
}

// MarkIdle resets the robot to the idle state.
func (r *Robot) MarkIdle() {
	r.status = StatusIdle
	r.velocity = model.Point{}
	r.path = nil
}

// Metrics summarizes robot activity over the simulated time so far.
type Metrics struct {
	DistanceTraveled float64 `json:"distance_traveled"`
	EnergyConsumed   float64 `json:"energy_consumed"`
	TasksCompleted   int     `json:"tasks_completed"`
	Collisions       int     `json:"collisions"`
	BatteryLevel     float64 `json:"battery_level"`
	BatteryPct       float64 `json:"battery_percentage"`
	AverageSpeed     float64 `json:"average_speed"`
	Efficiency       float64 `json:"efficiency"` // tasks per mAh
}

// Metrics returns a snapshot of the robot metrics.
func (r *Robot) Metrics() Metrics {
	m := Metrics{
		DistanceTraveled: r.distance,
		EnergyConsumed:   r.energy,
		TasksCompleted:   r.completed,
		Collisions:       r.collided,
		BatteryLevel:     r.battery,
		BatteryPct:       r.BatteryPct(),
	}
	if r.elapsed > 0 {
		m.AverageSpeed = r.distance / r.elapsed
	}
	if r.energy > 0 {
		m.Efficiency = float64(r.completed) / r.energy
	}
	return m
}
