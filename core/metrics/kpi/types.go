// Package kpi aggregates finished-task outcomes into per-day, per-type
// operational records.
package kpi

import "time"

// Record aggregates task outcomes for one task type and day.
type Record struct {
	Type           string
	Date           time.Time
	Completed      int
	Canceled       int
	Failed         int
	WaitSeconds    float64
	ServiceSeconds float64
	PathMeters     float64
}

// Total returns the number of finished tasks in the record.
func (r Record) Total() int {
	return r.Completed + r.Canceled + r.Failed
}

// SuccessRate returns the completed fraction of finished tasks.
func (r Record) SuccessRate() float64 {
	t := r.Total()
	if t == 0 {
		return 0
	}
	return float64(r.Completed) / float64(t)
}

// AvgWaitSeconds returns the mean queue wait across finished tasks.
func (r Record) AvgWaitSeconds() float64 {
	t := r.Total()
	if t == 0 {
		return 0
	}
	return r.WaitSeconds / float64(t)
}

// AvgServiceSeconds returns the mean execution time across finished tasks.
func (r Record) AvgServiceSeconds() float64 {
	t := r.Total()
	if t == 0 {
		return 0
	}
	return r.ServiceSeconds / float64(t)
}
