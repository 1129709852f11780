package metrics

import (
	"context"
	"time"

	"github.com/warebotics/warebot/core/events"
	coremetrics "github.com/warebotics/warebot/core/metrics"
	"github.com/warebotics/warebot/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// simulation events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[any], sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.Sink, ev any) {
	now := time.Now()
	switch e := ev.(type) {
	case events.TaskFinished:
		_ = sink.RecordTask(coremetrics.TaskEvent{
			TaskID:         e.Task.ID.String(),
			Type:           e.Task.Type.String(),
			Outcome:        e.Outcome,
			Priority:       e.Task.Priority,
			WaitSeconds:    e.Wait.Seconds(),
			ServiceSeconds: e.Service.Seconds(),
			Time:           now,
		})
	case events.PlanComputed:
		if r, ok := sink.(coremetrics.PlanRecorder); ok {
			_ = r.RecordPlan(coremetrics.PlanEvent{
				From:       e.From,
				To:         e.To,
				Waypoints:  e.Waypoints,
				PathMeters: e.PathMeters,
				Duration:   e.Duration,
				Fallback:   e.Fallback,
				Time:       now,
			})
		}
	case events.RobotState:
		if r, ok := sink.(coremetrics.RobotStateRecorder); ok {
			_ = r.RecordRobotState(coremetrics.RobotStateEvent{
				Position:       e.Position,
				Battery:        e.Battery,
				Status:         e.Status,
				TraveledMeters: e.TraveledMeters,
				Time:           now,
			})
		}
	case events.QueueChanged:
		if r, ok := sink.(coremetrics.QueueRecorder); ok {
			_ = r.RecordQueue(coremetrics.QueueEvent{
				Pending:        e.Pending,
				Completed:      e.Completed,
				Canceled:       e.Canceled,
				AvgWaitSeconds: e.AvgWaitSeconds,
				Throughput:     e.Throughput,
				Time:           now,
			})
		}
	case events.Scan:
		if r, ok := sink.(coremetrics.ScanRecorder); ok {
			_ = r.RecordScan(coremetrics.ScanEvent{
				Obstacles: e.Obstacles,
				Items:     e.Items,
				Time:      now,
			})
		}
	}
}
