package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/warebotics/warebot/core/metrics"
)

// PromSink records simulation events in Prometheus metrics.
type PromSink struct {
	tasks      *prometheus.CounterVec
	wait       prometheus.Histogram
	service    prometheus.Histogram
	plans      *prometheus.CounterVec
	planLength prometheus.Histogram
	battery    prometheus.Gauge
	traveled   prometheus.Gauge
	pending    prometheus.Gauge
	throughput prometheus.Gauge
	scanHits   *prometheus.CounterVec
}

// register adds c to reg, reusing an already registered collector of the same
// identity instead of failing.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// NewPromSink registers the simulation metrics on the default Prometheus
// registerer. The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error

	s.tasks, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_tasks_total",
		Help: "Total number of finished tasks",
	}, []string{"type", "outcome"}))
	if err != nil {
		return nil, err
	}
	s.wait, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_task_wait_seconds",
		Help:    "Time between task admission and dispatch",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	}))
	if err != nil {
		return nil, err
	}
	s.service, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_task_service_seconds",
		Help:    "Time between task dispatch and completion",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	}))
	if err != nil {
		return nil, err
	}
	s.plans, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_plans_total",
		Help: "Total number of planner invocations",
	}, []string{"fallback"}))
	if err != nil {
		return nil, err
	}
	s.planLength, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_plan_length_meters",
		Help:    "Length of planned paths",
		Buckets: prometheus.LinearBuckets(0, 5, 12),
	}))
	if err != nil {
		return nil, err
	}
	s.battery, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_robot_battery_percent",
		Help: "Robot battery charge in percent",
	}))
	if err != nil {
		return nil, err
	}
	s.traveled, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_robot_traveled_meters",
		Help: "Cumulative distance traveled by the robot",
	}))
	if err != nil {
		return nil, err
	}
	s.pending, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_queue_pending",
		Help: "Tasks waiting in the scheduler queue",
	}))
	if err != nil {
		return nil, err
	}
	s.throughput, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_queue_throughput_per_second",
		Help: "Completed tasks per simulated second",
	}))
	if err != nil {
		return nil, err
	}
	s.scanHits, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_scan_hits_total",
		Help: "Objects seen by perception passes",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RecordTask increments the outcome counter and observes the timings.
func (s *PromSink) RecordTask(ev coremetrics.TaskEvent) error {
	s.tasks.WithLabelValues(ev.Type, ev.Outcome).Inc()
	if ev.Outcome == "completed" {
		s.wait.Observe(ev.WaitSeconds)
		s.service.Observe(ev.ServiceSeconds)
	}
	return nil
}

// RecordPlan counts the invocation and observes the path length.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.plans.WithLabelValues(strconv.FormatBool(ev.Fallback)).Inc()
	if !ev.Fallback {
		s.planLength.Observe(ev.PathMeters)
	}
	return nil
}

// RecordRobotState updates the robot gauges.
func (s *PromSink) RecordRobotState(ev coremetrics.RobotStateEvent) error {
	s.battery.Set(ev.Battery)
	s.traveled.Set(ev.TraveledMeters)
	return nil
}

// RecordQueue updates the scheduler gauges.
func (s *PromSink) RecordQueue(ev coremetrics.QueueEvent) error {
	s.pending.Set(float64(ev.Pending))
	s.throughput.Set(ev.Throughput)
	return nil
}

// RecordScan counts detected objects.
func (s *PromSink) RecordScan(ev coremetrics.ScanEvent) error {
	s.scanHits.WithLabelValues("obstacle").Add(float64(ev.Obstacles))
	s.scanHits.WithLabelValues("item").Add(float64(ev.Items))
	return nil
}
