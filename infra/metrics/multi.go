package metrics

import coremetrics "github.com/warebotics/warebot/core/metrics"

// MultiSink fans events out to multiple sinks. Optional recorder interfaces
// are forwarded only to sinks implementing them.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTask forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordTask(ev coremetrics.TaskEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTask(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPlan forwards planner results.
func (m *MultiSink) RecordPlan(ev coremetrics.PlanEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PlanRecorder); ok {
			if err := rec.RecordPlan(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRobotState forwards robot snapshots.
func (m *MultiSink) RecordRobotState(ev coremetrics.RobotStateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RobotStateRecorder); ok {
			if err := rec.RecordRobotState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordQueue forwards queue statistics.
func (m *MultiSink) RecordQueue(ev coremetrics.QueueEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.QueueRecorder); ok {
			if err := rec.RecordQueue(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordScan forwards perception passes.
func (m *MultiSink) RecordScan(ev coremetrics.ScanEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ScanRecorder); ok {
			if err := rec.RecordScan(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
