package metrics

import (
	"time"

	"github.com/warebotics/warebot/core/model"
)

// TaskEvent represents one task leaving the system.
type TaskEvent struct {
	TaskID         string
	Type           string
	Outcome        string
	Priority       int
	WaitSeconds    float64
	ServiceSeconds float64
	Time           time.Time
}

// Sink records task outcomes for observability purposes.
type Sink interface {
	RecordTask(ev TaskEvent) error
}

// PlanEvent captures one planner invocation.
type PlanEvent struct {
	From       model.Point
	To         model.Point
	Waypoints  int
	PathMeters float64
	Duration   time.Duration
	Fallback   bool
	Time       time.Time
}

// PlanRecorder records planner results.
type PlanRecorder interface {
	RecordPlan(ev PlanEvent) error
}

// RobotStateEvent is a snapshot of the robot.
type RobotStateEvent struct {
	Position       model.Point
	Battery        float64
	Status         string
	TraveledMeters float64
	Time           time.Time
}

// RobotStateRecorder records robot snapshots.
type RobotStateRecorder interface {
	RecordRobotState(ev RobotStateEvent) error
}

// QueueEvent captures scheduler queue statistics.
type QueueEvent struct {
	Pending        int
	Completed      int
	Canceled       int
	AvgWaitSeconds float64
	Throughput     float64
	Time           time.Time
}

// QueueRecorder records queue statistics snapshots.
type QueueRecorder interface {
	RecordQueue(ev QueueEvent) error
}

// ScanEvent captures one perception pass.
type ScanEvent struct {
	Obstacles int
	Items     int
	Time      time.Time
}

// ScanRecorder records perception passes.
type ScanRecorder interface {
	RecordScan(ev ScanEvent) error
}

// NopSink implements every recorder interface with no-op methods.
type NopSink struct{}

func (NopSink) RecordTask(TaskEvent) error             { return nil }
func (NopSink) RecordPlan(PlanEvent) error             { return nil }
func (NopSink) RecordRobotState(RobotStateEvent) error { return nil }
func (NopSink) RecordQueue(QueueEvent) error           { return nil }
func (NopSink) RecordScan(ScanEvent) error             { return nil }
