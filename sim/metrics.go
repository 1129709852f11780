package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tickDuration  prometheus.Histogram
	plansComputed *prometheus.CounterVec
	tasksFinished *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	batteryPct    prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Histogram, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Gauge, prometheus.Gauge) {
	tick := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sim_tick_duration_seconds",
			Help:    "Wall time spent per simulation tick",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 8),
		},
	)
	plans := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sim_plan_queries_total",
			Help: "Number of path planning queries made by the run loop",
		},
		[]string{"result"},
	)
	tasks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sim_tasks_finished_total",
			Help: "Number of tasks settled by outcome",
		},
		[]string{"outcome"},
	)
	depth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_queue_depth",
			Help: "Tasks currently waiting in the scheduler",
		},
	)
	batt := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_robot_battery_percent",
			Help: "Robot battery charge in percent",
		},
	)
	return tick, plans, tasks, depth, batt
}

func init() {
	tickDuration, plansComputed, tasksFinished, queueDepth, batteryPct = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers simulation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tickDuration, plansComputed, tasksFinished, queueDepth, batteryPct)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	tickDuration, plansComputed, tasksFinished, queueDepth, batteryPct = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
