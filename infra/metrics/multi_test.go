package metrics

import (
	"testing"

	coremetrics "github.com/warebotics/warebot/core/metrics"
)

type countingSink struct {
	tasks int
	plans int
}

func (c *countingSink) RecordTask(coremetrics.TaskEvent) error { c.tasks++; return nil }
func (c *countingSink) RecordPlan(coremetrics.PlanEvent) error { c.plans++; return nil }

// taskOnlySink implements just the mandatory Sink interface.
type taskOnlySink struct {
	tasks int
}

func (c *taskOnlySink) RecordTask(coremetrics.TaskEvent) error { c.tasks++; return nil }

func TestMultiSink(t *testing.T) {
	s1 := &countingSink{}
	s2 := &countingSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordTask(coremetrics.TaskEvent{}); err != nil {
		t.Fatalf("record task: %v", err)
	}
	if err := m.RecordPlan(coremetrics.PlanEvent{}); err != nil {
		t.Fatalf("record plan: %v", err)
	}
	if s1.tasks != 1 || s2.tasks != 1 || s1.plans != 1 || s2.plans != 1 {
		t.Fatalf("events not forwarded: %+v %+v", s1, s2)
	}
}

func TestMultiSinkSkipsUnsupportedRecorders(t *testing.T) {
	full := &countingSink{}
	bare := &taskOnlySink{}
	m := NewMultiSink(full, bare)
	if err := m.RecordPlan(coremetrics.PlanEvent{}); err != nil {
		t.Fatalf("record plan: %v", err)
	}
	if full.plans != 1 {
		t.Fatalf("plan not forwarded to supporting sink")
	}
	if err := m.RecordTask(coremetrics.TaskEvent{}); err != nil {
		t.Fatalf("record task: %v", err)
	}
	if bare.tasks != 1 {
		t.Fatalf("task not forwarded to bare sink")
	}
}
