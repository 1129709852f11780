package kpi

import "time"

// Store persists daily KPI records.
type Store interface {
	Add(Record) error
	// Query returns records between start and end inclusive. An empty
	// taskType matches every type.
	Query(taskType string, start, end time.Time) ([]Record, error)
}

// Helper to align time to start of day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
