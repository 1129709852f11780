// Package report turns persisted task logs into daily KPI records and
// human-readable summaries.
package report

import (
	"github.com/warebotics/warebot/core/metrics/kpi"
	"github.com/warebotics/warebot/core/tasklog"
)

// Backfill aggregates historical task records into the KPI store.
func Backfill(store kpi.Store, history []tasklog.Record) error {
	for _, h := range history {
		rec := kpi.Record{
			Type:           h.Type,
			Date:           kpi.Day(h.Timestamp),
			WaitSeconds:    h.WaitSeconds,
			ServiceSeconds: h.ServiceSeconds,
			PathMeters:     h.PathMeters,
		}
		switch h.Outcome {
		case tasklog.OutcomeCompleted:
			rec.Completed = 1
		case tasklog.OutcomeCanceled:
			rec.Canceled = 1
		case tasklog.OutcomeFailed:
			rec.Failed = 1
		}
		if err := store.Add(rec); err != nil {
			return err
		}
	}
	return nil
}
