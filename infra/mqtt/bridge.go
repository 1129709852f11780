package mqtt

import (
	"context"

	"github.com/warebotics/warebot/core/events"
	"github.com/warebotics/warebot/internal/eventbus"
)

// Topics relative to the configured prefix.
const (
	TopicTaskFinished = "tasks/finished"
	TopicRobotState   = "robot/state"
	TopicQueueStats   = "queue/stats"
	TopicPlanComputed = "plan/computed"
	TopicScan         = "vision/scan"
)

type taskMessage struct {
	TaskID         string  `json:"task_id"`
	Type           string  `json:"type"`
	Outcome        string  `json:"outcome"`
	Priority       int     `json:"priority"`
	WaitSeconds    float64 `json:"wait_seconds"`
	ServiceSeconds float64 `json:"service_seconds"`
}

type robotMessage struct {
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Battery        float64 `json:"battery"`
	Status         string  `json:"status"`
	TraveledMeters float64 `json:"traveled_meters"`
}

type queueMessage struct {
	Pending        int     `json:"pending"`
	Completed      int     `json:"completed"`
	Canceled       int     `json:"canceled"`
	AvgWaitSeconds float64 `json:"avg_wait_seconds"`
	Throughput     float64 `json:"throughput"`
}

type planMessage struct {
	Waypoints  int     `json:"waypoints"`
	PathMeters float64 `json:"path_meters"`
	DurationMS float64 `json:"duration_ms"`
	Fallback   bool    `json:"fallback"`
}

type scanMessage struct {
	Obstacles int `json:"obstacles"`
	Items     int `json:"items"`
}

// StartEventPublisher subscribes to the event bus and mirrors simulation
// events onto broker topics. It stops when the context is canceled.
func StartEventPublisher(ctx context.Context, bus *eventbus.Bus[any], pub Publisher) {
	if bus == nil || pub == nil {
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
				forward(pub, ev)
			}
		}
	}()
}

func forward(pub Publisher, ev any) {
	switch e := ev.(type) {
	case events.TaskFinished:
		_ = pub.Publish(TopicTaskFinished, taskMessage{
			TaskID:         e.Task.ID.String(),
			Type:           e.Task.Type.String(),
			Outcome:        e.Outcome,
			Priority:       e.Task.Priority,
			WaitSeconds:    e.Wait.Seconds(),
			ServiceSeconds: e.Service.Seconds(),
		})
	case events.RobotState:
		_ = pub.Publish(TopicRobotState, robotMessage{
			X:              e.Position.X,
			Y:              e.Position.Y,
			Battery:        e.Battery,
			Status:         e.Status,
			TraveledMeters: e.TraveledMeters,
		})
	case events.QueueChanged:
		_ = pub.Publish(TopicQueueStats, queueMessage{
			Pending:        e.Pending,
			Completed:      e.Completed,
			Canceled:       e.Canceled,
			AvgWaitSeconds: e.AvgWaitSeconds,
			Throughput:     e.Throughput,
		})
	case events.PlanComputed:
		_ = pub.Publish(TopicPlanComputed, planMessage{
			Waypoints:  e.Waypoints,
			PathMeters: e.PathMeters,
			DurationMS: e.Duration.Seconds() * 1000,
			Fallback:   e.Fallback,
		})
	case events.Scan:
		_ = pub.Publish(TopicScan, scanMessage{
			Obstacles: e.Obstacles,
			Items:     e.Items,
		})
	}
}
