package events

import (
	"time"

	"github.com/warebotics/warebot/core/model"
)

// PlanComputed is published for every planner invocation. Fallback marks runs
// where no route was found and the robot drives the straight line instead.
type PlanComputed struct {
	From       model.Point
	To         model.Point
	Waypoints  int
	PathMeters float64
	Duration   time.Duration
	Fallback   bool
}
