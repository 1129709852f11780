package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/warebotics/warebot/core/metrics"
	"github.com/warebotics/warebot/infra/logger"
)

// InfluxSink writes simulation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing database never stops a run.
func NewInfluxSinkWithFallback(cfg coremetrics.InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTask writes the task outcome as a point.
func (s *InfluxSink) RecordTask(ev coremetrics.TaskEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("task_event").
		AddTag("task_id", ev.TaskID).
		AddTag("task_type", ev.Type).
		AddTag("outcome", ev.Outcome).
		AddTag("component", "scheduler").
		AddField("priority", ev.Priority).
		AddField("wait_seconds", round3(ev.WaitSeconds)).
		AddField("service_seconds", round3(ev.ServiceSeconds)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPlan writes one planner invocation.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_event").
		AddTag("fallback", strconv.FormatBool(ev.Fallback)).
		AddTag("component", "planner").
		AddField("waypoints", ev.Waypoints).
		AddField("path_meters", round3(ev.PathMeters)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRobotState writes a snapshot of the robot.
func (s *InfluxSink) RecordRobotState(ev coremetrics.RobotStateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("robot_state").
		AddTag("status", ev.Status).
		AddTag("component", "robot").
		AddField("x", round3(ev.Position.X)).
		AddField("y", round3(ev.Position.Y)).
		AddField("battery", round3(ev.Battery)).
		AddField("traveled_meters", round3(ev.TraveledMeters)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordQueue writes scheduler queue statistics.
func (s *InfluxSink) RecordQueue(ev coremetrics.QueueEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("queue_state").
		AddTag("component", "scheduler").
		AddField("pending", ev.Pending).
		AddField("completed", ev.Completed).
		AddField("canceled", ev.Canceled).
		AddField("avg_wait_seconds", round3(ev.AvgWaitSeconds)).
		AddField("throughput", round3(ev.Throughput)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordScan writes one perception pass.
func (s *InfluxSink) RecordScan(ev coremetrics.ScanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("scan_event").
		AddTag("component", "vision").
		AddField("obstacles", ev.Obstacles).
		AddField("items", ev.Items).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
