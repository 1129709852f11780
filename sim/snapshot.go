package sim

import (
	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/core/robot"
	"github.com/warebotics/warebot/core/scheduler"
)

// Snapshot is one observable frame of the simulation. It is passed by value
// over the event bus; slices are copies, so consumers on other goroutines may
// hold frames without racing the loop.
type Snapshot struct {
	Tick       int                  `json:"tick"`
	SimSeconds float64              `json:"sim_seconds"`
	Robot      RobotSnapshot        `json:"robot"`
	Tasks      []TaskSnapshot       `json:"tasks"`
	Stats      scheduler.Statistics `json:"stats"`
	Seen       map[string]int       `json:"seen,omitempty"`
	Env        EnvSnapshot          `json:"env"`
}

// RobotSnapshot is the robot part of a frame.
type RobotSnapshot struct {
	Position    model.Point   `json:"position"`
	Orientation float64       `json:"orientation"`
	BatteryPct  float64       `json:"battery_pct"`
	Status      string        `json:"status"`
	Carrying    string        `json:"carrying,omitempty"`
	Path        []model.Point `json:"path,omitempty"`
	Metrics     robot.Metrics `json:"metrics"`
}

// TaskSnapshot is an active task reduced to what dashboards display.
type TaskSnapshot struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Position model.Point `json:"position"`
	Priority int         `json:"priority"`
}

// EnvSnapshot is the warehouse geometry. Racks, chargers and obstacles are
// static for the lifetime of a run; item positions move as the robot works.
type EnvSnapshot struct {
	WidthM    float64          `json:"width_m"`
	LengthM   float64          `json:"length_m"`
	Racks     []model.Point    `json:"racks"`
	Chargers  []model.Point    `json:"chargers"`
	Obstacles []model.Obstacle `json:"obstacles"`
	Items     []model.Item     `json:"items"`
}

// Result summarizes a finished run.
type Result struct {
	Ticks          int                  `json:"ticks"`
	SimSeconds     float64              `json:"sim_seconds"`
	TasksGenerated int                  `json:"tasks_generated"`
	Robot          robot.Metrics        `json:"robot"`
	Queue          scheduler.Statistics `json:"queue"`
}

func (r *Runner) buildSnapshot() Snapshot {
	active := r.sched.Active()
	tasks := make([]TaskSnapshot, len(active))
	for i, t := range active {
		tasks[i] = TaskSnapshot{
			ID:       t.ID.String(),
			Type:     t.Type.String(),
			Position: t.Position,
			Priority: t.Priority,
		}
	}

	rs := RobotSnapshot{
		Position:    r.rob.Position(),
		Orientation: r.rob.Orientation(),
		BatteryPct:  r.rob.BatteryPct(),
		Status:      r.rob.Status().String(),
		Metrics:     r.rob.Metrics(),
	}
	if item := r.rob.Load(); item != nil {
		rs.Carrying = item.Type
	}
	if r.current != nil && r.current.waypoint < len(r.current.path) {
		rs.Path = append(rs.Path, r.current.path[r.current.waypoint:]...)
	}

	var seen map[string]int
	if len(r.seen) > 0 {
		seen = make(map[string]int, len(r.seen))
		for k, v := range r.seen {
			seen[k] = v
		}
	}

	env := r.envBase
	env.Items = append([]model.Item(nil), r.w.Items()...)

	return Snapshot{
		Tick:       r.tick,
		SimSeconds: float64(r.tick) * r.dt,
		Robot:      rs,
		Tasks:      tasks,
		Stats:      r.sched.Stats(),
		Seen:       seen,
		Env:        env,
	}
}
