// Package sim drives the warehouse simulation: a single-goroutine tick loop
// that generates tasks, dispatches them through the scheduler, plans paths,
// steps the robot and publishes observable state on the event bus.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/warebotics/warebot/core/events"
	"github.com/warebotics/warebot/core/logger"
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

// Deps are the components the runner orchestrates. Warehouse, Robot, Planner,
// Scheduler and Detector are required; the rest default to no-ops. A nil
// Generator disables random arrivals, which scripted runs rely on.
type Deps struct {
	Warehouse  *warehouse.Warehouse
	Robot      *robot.Robot
	Planner    *planner.Planner
	Scheduler  *scheduler.Scheduler
	Detector   *vision.Detector
	Classifier *vision.Classifier
	Generator  *warehouse.Generator
	Store      tasklog.Store
	Bus        *eventbus.Bus[any]
	RNG        *rand.Rand
	Log        logger.Logger
}

// activeTask is the task the robot is currently working on.
type activeTask struct {
	task       model.Task
	path       []model.Point
	waypoint   int
	retries    int
	meters     float64
	fallback   bool
	dispatched time.Time
}

// Runner owns the simulation loop. It is not safe for concurrent use; other
// goroutines observe it through the event bus.
type Runner struct {
	cfg Config
	dt  float64 // seconds per tick

	w     *warehouse.Warehouse
	rob   *robot.Robot
	plan  *planner.Planner
	sched *scheduler.Scheduler
	det   *vision.Detector
	cls   *vision.Classifier
	gen   *warehouse.Generator
	store tasklog.Store
	bus   *eventbus.Bus[any]
	rng   *rand.Rand
	log   logger.Logger

	tick         int
	current      *activeTask
	detections   []model.Detection
	seen         map[string]int
	generated    int
	chargeQueued bool
	envBase      EnvSnapshot
}

// New wires a runner from its dependencies. Zero config fields fall back to
// defaults.
func New(cfg Config, d Deps) (*Runner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d.Warehouse == nil || d.Robot == nil || d.Planner == nil || d.Scheduler == nil || d.Detector == nil {
		return nil, fmt.Errorf("warehouse, robot, planner, scheduler and detector are required")
	}
	if d.Store == nil {
		d.Store = tasklog.Nop{}
	}
	if d.Bus == nil {
		d.Bus = eventbus.NewBuffered[any](64)
	}
	if d.RNG == nil {
		d.RNG = rand.New(rand.NewSource(cfg.Seed))
	}
	if d.Log == nil {
		d.Log = infralogger.NopLogger{}
	}

	wcfg := d.Warehouse.Config()
	return &Runner{
		cfg:   cfg,
		dt:    float64(cfg.TickMS) / 1000,
		w:     d.Warehouse,
		rob:   d.Robot,
		plan:  d.Planner,
		sched: d.Scheduler,
		det:   d.Detector,
		cls:   d.Classifier,
		gen:   d.Generator,
		store: d.Store,
		bus:   d.Bus,
		rng:   d.RNG,
		log:   d.Log,
		envBase: EnvSnapshot{
			WidthM:    wcfg.WidthM,
			LengthM:   wcfg.LengthM,
			Racks:     append([]model.Point(nil), d.Warehouse.Racks()...),
			Chargers:  append([]model.Point(nil), d.Warehouse.Chargers()...),
			Obstacles: append([]model.Obstacle(nil), d.Warehouse.Obstacles()...),
		},
	}, nil
}

// Bus returns the event bus consumers subscribe to.
func (r *Runner) Bus() *eventbus.Bus[any] { return r.bus }

// Tick returns the number of ticks stepped so far.
func (r *Runner) Tick() int { return r.tick }

// Snapshot builds an observable frame of the current state.
func (r *Runner) Snapshot() Snapshot { return r.buildSnapshot() }

// Result summarizes the run so far.
func (r *Runner) Result() Result {
	return Result{
		Ticks:          r.tick,
		SimSeconds:     float64(r.tick) * r.dt,
		TasksGenerated: r.generated,
		Robot:          r.rob.Metrics(),
		Queue:          r.sched.Stats(),
	}
}

// Run steps the loop until the configured duration has elapsed or ctx is
// canceled, then returns the run summary. With RealTime set, ticks are paced
// at one per TickMS of wall time; otherwise the loop runs flat out.
func (r *Runner) Run(ctx context.Context) Result {
	total := 0
	if r.cfg.DurationS > 0 {
		total = r.cfg.DurationS * 1000 / r.cfg.TickMS
	}
	var pace *time.Ticker
	if r.cfg.RealTime {
		pace = time.NewTicker(time.Duration(r.cfg.TickMS) * time.Millisecond)
		defer pace.Stop()
	}
	r.log.Infof("simulation starting: %d ticks of %d ms", total, r.cfg.TickMS)

	for total == 0 || r.tick < total {
		if pace != nil {
			select {
			case <-pace.C:
			case <-ctx.Done():
				return r.Result()
			}
		} else if ctx.Err() != nil {
			return r.Result()
		}
		r.Step(ctx)
	}

	res := r.Result()
	r.log.Infof("simulation finished: %d ticks, %d completed, %d canceled",
		res.Ticks, res.Queue.CompletedCount, res.Queue.CanceledCount)
	return res
}

// Step advances the simulation by one tick. Scripted harnesses call it
// directly to interleave their own task injection with the loop.
func (r *Runner) Step(ctx context.Context) {
	started := time.Now()
	defer func() { tickDuration.Observe(time.Since(started).Seconds()) }()

	r.tick++
	r.rob.Advance(r.dt)

	if (r.tick-1)%r.cfg.ScanEveryTicks == 0 {
		r.scanSurroundings()
	}
	r.generateArrivals()
	r.checkBattery()
	if r.tick%r.cfg.ReplanEveryTicks == 0 {
		r.sched.Replan(r.rob.Position())
	}
	if r.current == nil {
		r.dispatchNext()
	}
	if r.current != nil {
		r.advanceTask(ctx)
	}
	if r.tick%r.cfg.SnapshotEveryTicks == 0 {
		r.publishState()
	}
}

// scanSurroundings refreshes obstacle and item detections from the robot's
// current position.
func (r *Runner) scanSurroundings() {
	pos := r.rob.Position()
	r.detections = r.det.DetectObstacles(pos, r.w.Obstacles())
	items := r.det.DetectItems(pos, r.w.Items())
	if r.cls != nil {
		r.seen = make(map[string]int)
		for _, c := range r.cls.Classify(items) {
			r.seen[c.Predicted]++
		}
	}
	r.bus.Publish(events.Scan{Obstacles: len(r.detections), Items: len(items)})
}

// generateArrivals draws at most one new task per tick at the configured
// arrival rate.
func (r *Runner) generateArrivals() {
	if r.gen == nil {
		return
	}
	var (
		task model.Task
		ok   bool
	)
	if rate := r.cfg.TaskRateOverride; rate > 0 {
		if r.rng.Float64() >= rate*r.dt {
			return
		}
		task, ok = r.gen.Next()
	} else {
		task, ok = r.gen.Poll(r.dt)
	}
	if !ok {
		return
	}
	if r.sched.Add(task, task.Priority) {
		r.generated++
	}
}

// checkBattery injects one urgent charging task at the nearest station when
// the charge drops below the configured threshold.
func (r *Runner) checkBattery() {
	if r.chargeQueued || r.rob.BatteryPct() >= r.cfg.LowBatteryPct {
		return
	}
	if r.current != nil && r.current.task.Type == model.TaskCharge {
		return
	}
	station, ok := r.w.NearestCharger(r.rob.Position())
	if !ok {
		return
	}
	task := model.NewTask(model.TaskCharge, station)
	task.Priority = 0
	if r.sched.Add(task, 0) {
		r.chargeQueued = true
		r.generated++
		r.log.Infof("battery at %.0f%%, charging task queued at (%.1f, %.1f)",
			r.rob.BatteryPct(), station.X, station.Y)
	}
}

// dispatchNext pops the highest-priority task and plans a path to it.
func (r *Runner) dispatchNext() {
	task, ok := r.sched.Next()
	if !ok {
		return
	}
	path, meters, fallback := r.planPath(task.Position)
	r.current = &activeTask{
		task:       task,
		path:       path,
		meters:     meters,
		fallback:   fallback,
		dispatched: time.Now(),
	}
	r.rob.SetPath(path)
	r.log.Debugf("dispatching %s %s to (%.1f, %.1f), %d waypoints",
		task.Type, task.ID, task.Position.X, task.Position.Y, len(path))
}

// planPath plans from the robot to goal with the latest detections. An empty
// plan falls back to the direct two-point segment.
func (r *Runner) planPath(goal model.Point) ([]model.Point, float64, bool) {
	from := r.rob.Position()
	started := time.Now()
	path := r.plan.Plan(from, goal, r.detections)
	fallback := path == nil
	if fallback {
		path = []model.Point{from, goal}
		plansComputed.WithLabelValues("fallback").Inc()
	} else {
		plansComputed.WithLabelValues("planned").Inc()
	}
	meters := pathMeters(path)
	r.bus.Publish(events.PlanComputed{
		From:       from,
		To:         goal,
		Waypoints:  len(path),
		PathMeters: meters,
		Duration:   time.Since(started),
		Fallback:   fallback,
	})
	return path, meters, fallback
}

// advanceTask moves the robot one step along the current path, replanning
// around freshly detected obstacles and executing the task on arrival.
func (r *Runner) advanceTask(ctx context.Context) {
	at := r.current
	if at.waypoint >= len(at.path) {
		r.arrive(ctx)
		return
	}
	next := at.path[at.waypoint]
	if r.segmentBlocked(next) {
		r.rob.MarkBlocked()
		r.replanCurrent(ctx)
		return
	}
	if r.rob.MoveToward(next, r.dt) {
		at.waypoint++
		if at.waypoint >= len(at.path) {
			r.arrive(ctx)
		}
	}
}

// segmentBlocked reports whether a known detection cuts the segment from the
// robot to the next waypoint.
func (r *Runner) segmentBlocked(next model.Point) bool {
	pos := r.rob.Position()
	for _, d := range r.detections {
		if d.Obstacle.BlocksSegment(pos, next) {
			return true
		}
	}
	return false
}

// replanCurrent retries the current task with the latest detections, then
// cancels it once the retry budget is spent.
func (r *Runner) replanCurrent(ctx context.Context) {
	at := r.current
	at.retries++
	if at.retries > r.cfg.MaxMoveRetries {
		r.log.Warnf("task %s still blocked after %d replans, canceling", at.task.ID, at.retries-1)
		r.sched.Cancel(at.task.ID)
		r.finish(ctx, at, tasklog.OutcomeCanceled)
		return
	}
	path, meters, fallback := r.planPath(at.task.Position)
	at.path, at.meters, at.fallback = path, meters, fallback
	at.waypoint = 0
	r.rob.SetPath(path)
}

// arrive executes the task the robot has reached and settles it with the
// scheduler.
func (r *Runner) arrive(ctx context.Context) {
	at := r.current
	if r.rob.ExecuteTask(at.task) {
		r.sched.Complete(at.task.ID)
		r.finish(ctx, at, tasklog.OutcomeCompleted)
		return
	}
	r.log.Warnf("%s task %s failed to execute", at.task.Type, at.task.ID)
	r.sched.Cancel(at.task.ID)
	r.finish(ctx, at, tasklog.OutcomeFailed)
}

// finish records the task outcome, announces it on the bus and returns the
// robot to idle.
func (r *Runner) finish(ctx context.Context, at *activeTask, outcome tasklog.Outcome) {
	now := time.Now()
	wait := now.Sub(at.task.Created)
	service := now.Sub(at.dispatched)

	rec := tasklog.Record{
		Timestamp:      now,
		TaskID:         at.task.ID.String(),
		Type:           at.task.Type.String(),
		Outcome:        outcome,
		Position:       at.task.Position,
		Priority:       at.task.Priority,
		WaitSeconds:    wait.Seconds(),
		ServiceSeconds: service.Seconds(),
		Waypoints:      len(at.path),
		PathMeters:     at.meters,
	}
	if err := r.store.Append(ctx, rec); err != nil {
		r.log.Errorf("task log append: %v", err)
	}
	tasksFinished.WithLabelValues(string(outcome)).Inc()
	r.bus.Publish(events.TaskFinished{
		Task:    at.task,
		Outcome: string(outcome),
		Wait:    wait,
		Service: service,
	})
	if at.task.Type == model.TaskCharge {
		r.chargeQueued = false
	}
	r.current = nil
	r.rob.MarkIdle()
}

// publishState emits the periodic snapshot and state events.
func (r *Runner) publishState() {
	snap := r.buildSnapshot()
	queueDepth.Set(float64(snap.Stats.PendingCount))
	batteryPct.Set(snap.Robot.BatteryPct)
	r.bus.Publish(snap)
	r.bus.Publish(events.RobotState{
		Position:       snap.Robot.Position,
		Battery:        snap.Robot.BatteryPct,
		Status:         snap.Robot.Status,
		TraveledMeters: snap.Robot.Metrics.DistanceTraveled,
	})
	r.bus.Publish(events.QueueChanged{
		Pending:        snap.Stats.PendingCount,
		Completed:      snap.Stats.CompletedCount,
		Canceled:       snap.Stats.CanceledCount,
		AvgWaitSeconds: snap.Stats.AvgWaitTime,
		Throughput:     snap.Stats.Throughput,
	})
}

func pathMeters(path []model.Point) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += path[i-1].Dist(path[i])
	}
	return total
}
