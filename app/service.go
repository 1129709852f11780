// Package app wires the simulation components from configuration and runs
// them for the lifetime of one context.
package app

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/samber/lo"

	"github.com/warebotics/warebot/config"
	"github.com/warebotics/warebot/core/logger"
	coremetrics "github.com/warebotics/warebot/core/metrics"
	coremon "github.com/warebotics/warebot/core/monitoring"
	"github.com/warebotics/warebot/core/planner"
	"github.com/warebotics/warebot/core/robot"
	"github.com/warebotics/warebot/core/scheduler"
	"github.com/warebotics/warebot/core/tasklog"
	"github.com/warebotics/warebot/core/vision"
	"github.com/warebotics/warebot/core/warehouse"
	"github.com/warebotics/warebot/dashboard"
	infralogger "github.com/warebotics/warebot/infra/logger"
	inframetrics "github.com/warebotics/warebot/infra/metrics"
	"github.com/warebotics/warebot/infra/monitoring"
	"github.com/warebotics/warebot/infra/mqtt"
	"github.com/warebotics/warebot/infra/web"
	"github.com/warebotics/warebot/internal/eventbus"
	"github.com/warebotics/warebot/sim"
)

// Service owns one simulation run and its attached consumers.
type Service struct {
	cfg     *config.Config
	runner  *sim.Runner
	bus     *eventbus.Bus[any]
	store   tasklog.Store
	sink    coremetrics.Sink
	pub     mqtt.Publisher
	webSrv  *web.Server
	hist    *dashboard.Collector
	monitor coremon.Monitor
	log     logger.Logger
	out     io.Writer

	result sim.Result
	ran    bool
}

// New creates a Service from the configuration. Every component draws its
// randomness from one source seeded by cfg.Sim.Seed, so identical configs
// reproduce identical runs.
func New(cfg *config.Config) (*Service, error) {
	logg := infralogger.New("service")

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Sim.Seed))
	w, err := warehouse.New(cfg.Warehouse, rng)
	if err != nil {
		return nil, fmt.Errorf("warehouse: %w", err)
	}
	rob := robot.New(cfg.Robot, w.Start())
	sched := scheduler.New(cfg.Scheduler, infralogger.New("scheduler"))

	classes := make([]string, w.Config().ItemTypes)
	for i := range classes {
		classes[i] = fmt.Sprintf("type_%d", i+1)
	}

	store, err := tasklog.Open(context.Background(), cfg.TaskLog)
	if err != nil {
		return nil, fmt.Errorf("tasklog: %w", err)
	}

	bus := eventbus.NewBuffered[any](256)
	runner, err := sim.New(cfg.Sim, sim.Deps{
		Warehouse:  w,
		Robot:      rob,
		Planner:    planner.New(w.Grid(), cfg.Planner, infralogger.New("planner")),
		Scheduler:  sched,
		Detector:   vision.NewDetector(cfg.Vision, rng),
		Classifier: vision.NewClassifier(classes, cfg.Vision.Accuracy, rng),
		Generator:  warehouse.NewGenerator(w, rng),
		Store:      store,
		Bus:        bus,
		RNG:        rng,
		Log:        infralogger.New("sim"),
	})
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}

	svc := &Service{
		cfg:     cfg,
		runner:  runner,
		bus:     bus,
		store:   store,
		monitor: monitor,
		log:     logg,
		out:     os.Stdout,
		hist:    dashboard.NewCollector(0),
	}

	if len(cfg.Metrics.Sinks) > 0 {
		sink, err := inframetrics.New(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		svc.sink = sink
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = pub
	}
	if cfg.Web.Enabled {
		srv, err := web.New(cfg.Web, store, svc.hist, infralogger.New("web"))
		if err != nil {
			return nil, fmt.Errorf("web server: %w", err)
		}
		svc.webSrv = srv
	}
	return svc, nil
}

// Result returns the outcome of the finished run.
func (s *Service) Result() (sim.Result, bool) { return s.result, s.ran }

// SetOutput redirects the dashboard and final report away from stdout.
func (s *Service) SetOutput(w io.Writer) { s.out = w }

// Run starts the consumers, drives the simulation to completion and prints
// the final report. It blocks until the run ends or ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	defer s.monitor.Recover()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	dash := dashboard.New(s.hist, s.out, 0)
	dash.Start(runCtx, s.bus)

	if s.sink != nil {
		inframetrics.StartEventCollector(runCtx, s.bus, s.sink)
	}
	if lo.Contains(s.cfg.Metrics.Sinks, "prometheus") {
		go func() {
			if err := inframetrics.StartPromServer(runCtx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
				s.monitor.CaptureException(err, map[string]string{"component": "metrics"})
			}
		}()
	}
	if s.pub != nil {
		mqtt.StartEventPublisher(runCtx, s.bus, s.pub)
	}
	if s.webSrv != nil {
		go func() {
			if err := s.webSrv.Start(runCtx, s.bus); err != nil {
				s.log.Errorf("web server: %v", err)
				s.monitor.CaptureException(err, map[string]string{"component": "web"})
			}
		}()
	}

	s.result = s.runner.Run(runCtx)
	s.ran = true
	dash.FinalReport(s.result)

	cancel()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Disconnect()
	}
	err := s.store.Close()
	s.monitor.Flush(2 * time.Second)
	s.bus.Close()
	return err
}
