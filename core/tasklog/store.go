// Package tasklog persists the outcome of every finished task so runs can be
// audited and summarized after the fact. Backends range from a flat JSONL
// file to SQLite and MongoDB; all of them serve the same Store interface.
package tasklog

import (
	"context"
	"time"

	"github.com/warebotics/warebot/core/model"
)

// Outcome states how a task left the system.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeFailed    Outcome = "failed"
)

// Record captures one finished task and its timing.
type Record struct {
	Timestamp      time.Time   `json:"timestamp" bson:"timestamp"`
	TaskID         string      `json:"task_id" bson:"task_id"`
	Type           string      `json:"type" bson:"type"`
	Outcome        Outcome     `json:"outcome" bson:"outcome"`
	Position       model.Point `json:"position" bson:"position"`
	Priority       int         `json:"priority" bson:"priority"`
	WaitSeconds    float64     `json:"wait_seconds" bson:"wait_seconds"`
	ServiceSeconds float64     `json:"service_seconds" bson:"service_seconds"`
	Waypoints      int         `json:"waypoints" bson:"waypoints"`
	PathMeters     float64     `json:"path_meters" bson:"path_meters"`
}

// Query defines filters for retrieving records. Zero fields match everything.
type Query struct {
	Start   time.Time
	End     time.Time
	Type    string
	Outcome Outcome
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Type != "" && r.Type != q.Type {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Nop discards records and returns no results.
type Nop struct{}

func (Nop) Append(context.Context, Record) error { return nil }

func (Nop) Query(context.Context, Query) ([]Record, error) { return nil, nil }

func (Nop) Close() error { return nil }
