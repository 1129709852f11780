package events

import (
	"time"

	"github.com/warebotics/warebot/core/model"
)

// TaskFinished is published when a task leaves the system.
type TaskFinished struct {
	Task    model.Task
	Outcome string // completed, canceled or failed
	Wait    time.Duration
	Service time.Duration
}

// QueueChanged is published after every scheduler mutation worth reporting.
type QueueChanged struct {
	Pending        int
	Completed      int
	Canceled       int
	AvgWaitSeconds float64
	Throughput     float64
}
