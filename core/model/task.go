package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskType defines the kind of work a task asks the robot to perform.
type TaskType int

const (
	TaskPick TaskType = iota
	TaskPlace
	TaskCharge
)

// DefaultPriority is the admission priority used when none is given.
// Lower values dispatch earlier.
const DefaultPriority = 1

// Task is a unit of work for the robot. ID is the stable identity used by the
// scheduler; two Task values with equal IDs denote the same task.
type Task struct {
	ID       uuid.UUID  `json:"id"`
	Type     TaskType   `json:"type"`
	Position Point      `json:"position"` // where the robot must travel to
	Item     *Item      `json:"item,omitempty"`
	Location *Point     `json:"location,omitempty"` // drop-off for place tasks
	Priority int        `json:"priority"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Created  time.Time  `json:"created"`
}

// NewTask builds a task of the given type at the given position with a fresh ID.
func NewTask(t TaskType, position Point) Task {
	return Task{
		ID:       uuid.New(),
		Type:     t,
		Position: position,
		Priority: DefaultPriority,
		Created:  time.Now(),
	}
}

// String returns a human-readable representation of the task type.
func (t TaskType) String() string {
	switch t {
	case TaskPick:
		return "pick"
	case TaskPlace:
		return "place"
	case TaskCharge:
		return "charge"
	default:
		return "unknown"
	}
}

// ParseTaskType maps the textual form back to a TaskType.
func ParseTaskType(s string) (TaskType, bool) {
	switch s {
	case "pick":
		return TaskPick, true
	case "place":
		return TaskPlace, true
	case "charge":
		return TaskCharge, true
	default:
		return 0, false
	}
}
