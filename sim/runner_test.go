package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/warebotics/warebot/core/events"
	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/core/planner"
	"github.com/warebotics/warebot/core/robot"
	"github.com/warebotics/warebot/core/scheduler"
	"github.com/warebotics/warebot/core/tasklog"
	"github.com/warebotics/warebot/core/vision"
	"github.com/warebotics/warebot/core/warehouse"
	infralogger "github.com/warebotics/warebot/infra/logger"
	"github.com/warebotics/warebot/internal/eventbus"
)

// captureStore records appended task outcomes in memory.
type captureStore struct {
	recs []tasklog.Record
}

func (c *captureStore) Append(_ context.Context, r tasklog.Record) error {
	c.recs = append(c.recs, r)
	return nil
}

func (c *captureStore) Query(context.Context, tasklog.Query) ([]tasklog.Record, error) {
	return c.recs, nil
}

func (c *captureStore) Close() error { return nil }

func (c *captureStore) byType(t string) []tasklog.Record {
	var out []tasklog.Record
	for _, r := range c.recs {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

type rig struct {
	runner *Runner
	w      *warehouse.Warehouse
	rob    *robot.Robot
	sched  *scheduler.Scheduler
	store  *captureStore
	bus    *eventbus.Bus[any]
}

func newRig(t *testing.T, seed int64, cfg Config, wcfg warehouse.Config, rcfg robot.Config, withGen bool) *rig {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	w, err := warehouse.New(wcfg, rng)
	if err != nil {
		t.Fatalf("warehouse: %v", err)
	}
	rob := robot.New(rcfg, w.Start())
	sched := scheduler.New(scheduler.Config{}, infralogger.NopLogger{})
	store := &captureStore{}
	bus := eventbus.NewBuffered[any](4096)

	classes := make([]string, w.Config().ItemTypes)
	for i := range classes {
		classes[i] = fmt.Sprintf("type_%d", i+1)
	}
	var gen *warehouse.Generator
	if withGen {
		gen = warehouse.NewGenerator(w, rng)
	}

	r, err := New(cfg, Deps{
		Warehouse:  w,
		Robot:      rob,
		Planner:    planner.New(w.Grid(), planner.Config{}, infralogger.NopLogger{}),
		Scheduler:  sched,
		Detector:   vision.NewDetector(vision.Config{}, rng),
		Classifier: vision.NewClassifier(classes, 0.9, rng),
		Generator:  gen,
		Store:      store,
		Bus:        bus,
		RNG:        rng,
	})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	return &rig{runner: r, w: w, rob: rob, sched: sched, store: store, bus: bus}
}

// emptyFloor keeps the obstacle count at zero so runs are free of detections.
func emptyFloor() warehouse.Config {
	return warehouse.Config{ObstacleDensity: 1e-9}
}

func drain(sub <-chan any) []any {
	var out []any
	for {
		select {
		case ev := <-sub:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{}, Deps{}); err == nil {
		t.Fatalf("expected error for missing components")
	}
	if _, err := New(Config{TickMS: -5}, Deps{}); err == nil {
		t.Fatalf("expected error for negative tick")
	}
	r := newRig(t, 1, Config{}, warehouse.Config{}, robot.Config{}, false).runner
	if r.Bus() == nil {
		t.Fatalf("bus not defaulted")
	}
	if r.Tick() != 0 {
		t.Fatalf("fresh runner at tick %d", r.Tick())
	}
}

func TestRunnerCompletesChargeTask(t *testing.T) {
	rg := newRig(t, 7, Config{MaxMoveRetries: 50}, emptyFloor(), robot.Config{}, false)
	// A free-floor goal well away from the start forces a real drive.
	task := model.NewTask(model.TaskCharge, model.Point{X: 18, Y: 2})
	if !rg.sched.Add(task, task.Priority) {
		t.Fatalf("admit failed")
	}

	ctx := context.Background()
	for i := 0; i < 1500 && len(rg.store.recs) == 0; i++ {
		rg.runner.Step(ctx)
	}

	recs := rg.store.byType("charge")
	if len(recs) != 1 {
		t.Fatalf("expected one charge record, got %d (%d total)", len(recs), len(rg.store.recs))
	}
	rec := recs[0]
	if rec.Outcome != tasklog.OutcomeCompleted {
		t.Fatalf("outcome = %s", rec.Outcome)
	}
	if rec.Waypoints < 2 || rec.PathMeters <= 0 {
		t.Fatalf("path not recorded: %d waypoints, %.2f m", rec.Waypoints, rec.PathMeters)
	}
	if st := rg.sched.Stats(); st.CompletedCount != 1 || st.PendingCount != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if rg.rob.BatteryPct() != 100 {
		t.Fatalf("battery at %.1f%% after charging", rg.rob.BatteryPct())
	}
	if rg.rob.Status() != robot.StatusIdle {
		t.Fatalf("robot not idle after task, status %s", rg.rob.Status())
	}
}

func TestRunnerLowBatteryInjectsCharge(t *testing.T) {
	rcfg := robot.Config{BatteryCapacity: 60, BatteryDischargeRate: 30}
	rg := newRig(t, 11, Config{MaxMoveRetries: 50, LowBatteryPct: 30}, emptyFloor(), rcfg, false)

	// A pick far from the start drains the battery on the way.
	item := rg.w.Item(0)
	task := model.NewTask(model.TaskPick, item.Position)
	task.Item = item
	rg.sched.Add(task, task.Priority)

	ctx := context.Background()
	for i := 0; i < 4000 && len(rg.store.byType("charge")) == 0; i++ {
		rg.runner.Step(ctx)
	}

	charges := rg.store.byType("charge")
	if len(charges) == 0 {
		t.Fatalf("no charge task recorded; records: %+v", rg.store.recs)
	}
	if charges[0].Priority != 0 {
		t.Fatalf("injected charge priority = %d, want 0", charges[0].Priority)
	}
	if charges[0].Outcome != tasklog.OutcomeCompleted {
		t.Fatalf("charge outcome = %s", charges[0].Outcome)
	}
	if rg.rob.BatteryPct() < 30 {
		t.Fatalf("battery still low at %.1f%%", rg.rob.BatteryPct())
	}
}

func TestRunnerCancelsPersistentlyBlockedTask(t *testing.T) {
	rg := newRig(t, 3, Config{MaxMoveRetries: 1, ScanEveryTicks: 100000}, emptyFloor(), robot.Config{}, false)
	goal := model.Point{X: 15, Y: 25}
	task := model.NewTask(model.TaskPick, goal)
	rg.sched.Add(task, task.Priority)

	ctx := context.Background()
	rg.runner.Step(ctx) // dispatches and plans over a clear floor

	// A detection covering the whole floor appears mid-drive. Every replan
	// fails into the two-point fallback, which stays blocked until the retry
	// budget is spent.
	rg.runner.detections = []model.Detection{{
		Obstacle: model.Obstacle{ID: 900, Position: goal, Size: model.Size{Width: 60, Length: 60, Height: 1}},
		Position: goal,
	}}
	for i := 0; i < 10 && len(rg.store.recs) == 0; i++ {
		rg.runner.Step(ctx)
	}

	if len(rg.store.recs) != 1 {
		t.Fatalf("expected one record, got %d", len(rg.store.recs))
	}
	if rg.store.recs[0].Outcome != tasklog.OutcomeCanceled {
		t.Fatalf("outcome = %s", rg.store.recs[0].Outcome)
	}
	if rg.runner.current != nil {
		t.Fatalf("current task not cleared")
	}
	if st := rg.sched.Stats(); st.CanceledCount != 1 {
		t.Fatalf("canceled count = %d", st.CanceledCount)
	}
	if rg.rob.Metrics().Collisions == 0 {
		t.Fatalf("blocked encounters not counted")
	}
}

func TestRunnerFallbackPlanPublished(t *testing.T) {
	rg := newRig(t, 5, Config{}, warehouse.Config{}, robot.Config{}, false)
	sub := rg.bus.Subscribe()
	defer rg.bus.Unsubscribe(sub)

	// A goal on a rack cell is rejected by the planner.
	task := model.NewTask(model.TaskPick, rg.w.Racks()[0])
	rg.sched.Add(task, task.Priority)
	rg.runner.Step(context.Background())

	var plans []events.PlanComputed
	for _, ev := range drain(sub) {
		if p, ok := ev.(events.PlanComputed); ok {
			plans = append(plans, p)
		}
	}
	if len(plans) != 1 {
		t.Fatalf("expected one plan event, got %d", len(plans))
	}
	if !plans[0].Fallback || plans[0].Waypoints != 2 {
		t.Fatalf("plan = %+v, want two-point fallback", plans[0])
	}
}

func TestRunnerEventCadence(t *testing.T) {
	rg := newRig(t, 9, Config{DurationS: 4, ScanEveryTicks: 5, SnapshotEveryTicks: 10}, emptyFloor(), robot.Config{}, false)
	sub := rg.bus.Subscribe()
	defer rg.bus.Unsubscribe(sub)

	res := rg.runner.Run(context.Background())
	if res.Ticks != 40 {
		t.Fatalf("ticks = %d, want 40", res.Ticks)
	}

	var snaps []Snapshot
	scans, robots, queues := 0, 0, 0
	for _, ev := range drain(sub) {
		switch e := ev.(type) {
		case Snapshot:
			snaps = append(snaps, e)
		case events.Scan:
			scans++
		case events.RobotState:
			robots++
		case events.QueueChanged:
			queues++
		}
	}
	if len(snaps) != 4 {
		t.Fatalf("snapshots = %d, want 4", len(snaps))
	}
	if scans != 8 {
		t.Fatalf("scans = %d, want 8", scans)
	}
	if robots != 4 || queues != 4 {
		t.Fatalf("state events = %d/%d, want 4/4", robots, queues)
	}

	last := snaps[len(snaps)-1]
	if last.Tick != 40 {
		t.Fatalf("last snapshot at tick %d", last.Tick)
	}
	if math.Abs(last.SimSeconds-4) > 1e-9 {
		t.Fatalf("sim seconds = %v", last.SimSeconds)
	}
	if len(last.Env.Racks) == 0 || len(last.Env.Chargers) == 0 {
		t.Fatalf("snapshot missing warehouse geometry")
	}
	if last.Robot.Status != "idle" {
		t.Fatalf("robot status = %s", last.Robot.Status)
	}
}

func TestRunnerDeterministicWithSeed(t *testing.T) {
	run := func() Result {
		rg := newRig(t, 42, Config{DurationS: 30, TaskRateOverride: 2}, warehouse.Config{}, robot.Config{}, true)
		return rg.runner.Run(context.Background())
	}
	a, b := run(), run()

	if a.TasksGenerated != b.TasksGenerated {
		t.Fatalf("generated %d vs %d", a.TasksGenerated, b.TasksGenerated)
	}
	if a.Queue.CompletedCount != b.Queue.CompletedCount || a.Queue.CanceledCount != b.Queue.CanceledCount {
		t.Fatalf("queue %+v vs %+v", a.Queue, b.Queue)
	}
	if a.Robot.DistanceTraveled != b.Robot.DistanceTraveled {
		t.Fatalf("distance %v vs %v", a.Robot.DistanceTraveled, b.Robot.DistanceTraveled)
	}
	if a.Robot.TasksCompleted != b.Robot.TasksCompleted {
		t.Fatalf("completed %d vs %d", a.Robot.TasksCompleted, b.Robot.TasksCompleted)
	}
}

func TestRunnerRunsUntilCanceled(t *testing.T) {
	rg := newRig(t, 2, Config{DurationS: -1, TaskRateOverride: 1}, emptyFloor(), robot.Config{}, true)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() { done <- rg.runner.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case res := <-done:
		if res.Ticks == 0 {
			t.Fatalf("no ticks before cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop on cancel")
	}
}
