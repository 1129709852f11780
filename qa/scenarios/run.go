package scenarios

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/warebotics/warebot/core/planner"
	"github.com/warebotics/warebot/core/robot"
	"github.com/warebotics/warebot/core/scheduler"
	"github.com/warebotics/warebot/core/vision"
	"github.com/warebotics/warebot/core/warehouse"
	"github.com/warebotics/warebot/infra/logger"
	"github.com/warebotics/warebot/sim"
)

// Run plays the scenario on an in-memory simulation and returns the final
// summary. Scripted tasks are admitted right before the tick they name; there
// is no random task source.
func Run(ctx context.Context, sc *Scenario) (sim.Result, error) {
	var wcfg warehouse.Config
	sc.Warehouse.Apply(&wcfg)
	rng := rand.New(rand.NewSource(sc.Seed))
	w, err := warehouse.New(wcfg, rng)
	if err != nil {
		return sim.Result{}, fmt.Errorf("warehouse: %w", err)
	}

	log := logger.NopLogger{}
	sched := scheduler.New(scheduler.Config{}, log)
	r, err := sim.New(sim.Config{Seed: sc.Seed}, sim.Deps{
		Warehouse: w,
		Robot:     robot.New(robot.Config{}, w.Start()),
		Planner:   planner.New(w.Grid(), planner.Config{}, log),
		Scheduler: sched,
		Detector:  vision.NewDetector(vision.Config{}, rng),
		RNG:       rng,
		Log:       log,
	})
	if err != nil {
		return sim.Result{}, fmt.Errorf("runner: %w", err)
	}

	byTick := make(map[int][]TaskDef)
	for _, d := range sc.Tasks {
		byTick[d.AtTick] = append(byTick[d.AtTick], d)
	}
	for tick := 0; tick < sc.DurationTicks; tick++ {
		for _, d := range byTick[tick] {
			task := d.ToTask()
			sched.Add(task, task.Priority)
		}
		r.Step(ctx)
	}
	return r.Result(), nil
}

// RunScenario plays the scenario and checks its expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	res, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run scenario %s: %v", sc.Name, err)
	}
	if res.Queue.CompletedCount < sc.Expected.MinCompleted {
		t.Errorf("scenario %s expected at least %d completed, got %d",
			sc.Name, sc.Expected.MinCompleted, res.Queue.CompletedCount)
	}
}
