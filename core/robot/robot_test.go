package robot

import (
	"math"
	"testing"

	"github.com/warebotics/warebot/core/model"
)

func TestMoveTowardStepsAtMaxSpeed(t *testing.T) {
	r := New(Config{}, model.Point{})
	arrived := r.MoveToward(model.Point{X: 1, Y: 0}, 0.1)
	if arrived {
		t.Fatalf("1 m away should not be reached in one 0.1 s step")
	}
	if got := r.Position().X; math.Abs(got-0.15) > 1e-9 {
		t.Fatalf("expected x=0.15 after one step, got %v", got)
	}
	if r.Status() != StatusMoving {
		t.Fatalf("expected moving status, got %v", r.Status())
	}
}

func TestMoveTowardArrivesWithoutOvershoot(t *testing.T) {
	r := New(Config{}, model.Point{})
	target := model.Point{X: 1, Y: 0}
	arrived := false
	for i := 0; i < 100 && !arrived; i++ {
		arrived = r.MoveToward(target, 0.1)
	}
	if !arrived {
		t.Fatalf("never arrived")
	}
	if d := r.Position().Dist(target); d > 0.01 {
		t.Fatalf("stopped %v m short of target", d)
	}
	if got := r.Metrics().DistanceTraveled; math.Abs(got-1) > 0.01 {
		t.Fatalf("odometer should read ~1 m, got %v", got)
	}
}

func TestMoveTowardDrainsBattery(t *testing.T) {
	r := New(Config{}, model.Point{})
	r.MoveToward(model.Point{X: 10, Y: 0}, 0.1)
	// Full speed for 0.1 s at 100 mAh/s drains 10 mAh.
	if got := r.Battery(); math.Abs(got-9990) > 1e-9 {
		t.Fatalf("expected 9990 mAh got %v", got)
	}
}

func TestBatteryNeverNegative(t *testing.T) {
	r := New(Config{BatteryCapacity: 1}, model.Point{})
	for i := 0; i < 100; i++ {
		r.MoveToward(model.Point{X: 1000, Y: 0}, 1)
	}
	if r.Battery() != 0 {
		t.Fatalf("battery should clamp at 0, got %v", r.Battery())
	}
}

func TestPickPlaceCycle(t *testing.T) {
	r := New(Config{}, model.Point{})
	item := &model.Item{ID: 1, WeightKg: 2}

	if !r.Pick(item) {
		t.Fatalf("pick should succeed")
	}
	if r.Load() != item || r.Gripper().State() != GripperClosed {
		t.Fatalf("robot should hold the item with a closed gripper")
	}
	if r.Pick(&model.Item{ID: 2, WeightKg: 1}) {
		t.Fatalf("pick while loaded should fail")
	}

	drop := model.Point{X: 3, Y: 4}
	if !r.Place(drop) {
		t.Fatalf("place should succeed")
	}
	if item.Position != drop {
		t.Fatalf("released item should land at %v, got %v", drop, item.Position)
	}
	if r.Load() != nil {
		t.Fatalf("load should be cleared after place")
	}
	if r.Place(drop) {
		t.Fatalf("place with empty gripper should fail")
	}
}

func TestGripperCapacity(t *testing.T) {
	r := New(Config{GripperCapacityKg: 5}, model.Point{})
	if r.Pick(&model.Item{ID: 1, WeightKg: 6}) {
		t.Fatalf("overweight item should be refused")
	}
	if r.Gripper().State() != GripperOpen || r.Load() != nil {
		t.Fatalf("failed grasp must leave the gripper open and empty")
	}
}

func TestChargeRefills(t *testing.T) {
	r := New(Config{}, model.Point{})
	r.MoveToward(model.Point{X: 10, Y: 0}, 1)
	if r.Battery() == r.Config().BatteryCapacity {
		t.Fatalf("expected some drain before charging")
	}
	if !r.Charge() {
		t.Fatalf("charge should succeed")
	}
	if r.Battery() != r.Config().BatteryCapacity || r.Status() != StatusCharging {
		t.Fatalf("charge should refill to capacity")
	}
}

func TestExecuteTask(t *testing.T) {
	r := New(Config{}, model.Point{})

	if r.ExecuteTask(model.Task{Type: model.TaskPick}) {
		t.Fatalf("pick task without item should fail")
	}
	item := &model.Item{ID: 1, WeightKg: 1}
	if !r.ExecuteTask(model.Task{Type: model.TaskPick, Item: item}) {
		t.Fatalf("pick task should succeed")
	}
	loc := model.Point{X: 1, Y: 1}
	if !r.ExecuteTask(model.Task{Type: model.TaskPlace, Location: &loc}) {
		t.Fatalf("place task should succeed")
	}
	if !r.ExecuteTask(model.Task{Type: model.TaskCharge}) {
		t.Fatalf("charge task should succeed")
	}
	if got := r.Metrics().TasksCompleted; got != 3 {
		t.Fatalf("expected 3 completed tasks got %d", got)
	}
}

func TestMetricsAverageSpeed(t *testing.T) {
	r := New(Config{}, model.Point{})
	for i := 0; i < 10; i++ {
		r.Advance(0.1)
		r.MoveToward(model.Point{X: 100, Y: 0}, 0.1)
	}
	m := r.Metrics()
	// 10 full-speed steps of 0.15 m over 1 s of simulated time.
	if math.Abs(m.AverageSpeed-1.5) > 1e-9 {
		t.Fatalf("expected average speed 1.5 got %v", m.AverageSpeed)
	}
	if m.Collisions != 0 {
		t.Fatalf("expected no collisions")
	}
	r.MarkBlocked()
	if r.Metrics().Collisions != 1 || r.Status() != StatusBlocked {
		t.Fatalf("blocked mark should count a collision")
	}
}
