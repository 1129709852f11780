package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/core/robot"
	"github.com/warebotics/warebot/core/scheduler"
	"github.com/warebotics/warebot/internal/eventbus"
	"github.com/warebotics/warebot/sim"
)

func testSnapshot() sim.Snapshot {
	return sim.Snapshot{
		Tick:       125,
		SimSeconds: 12.5,
		Robot: sim.RobotSnapshot{
			Position:   model.Point{X: 3, Y: 4},
			BatteryPct: 72.5,
			Status:     "moving",
			Metrics:    robot.Metrics{DistanceTraveled: 42.3, TasksCompleted: 6},
		},
		Stats: scheduler.Statistics{CompletedCount: 6, PendingCount: 2},
		Env: sim.EnvSnapshot{
			WidthM:  20,
			LengthM: 30,
			Racks:   make([]model.Point, 10),
			Items:   make([]model.Item, 15),
		},
	}
}

func TestDashboardRenderBeforeFirstFrame(t *testing.T) {
	d := New(NewCollector(0), &bytes.Buffer{}, 0)
	if out := d.Render(); !strings.Contains(out, "waiting for first frame") {
		t.Fatalf("unexpected empty render:\n%s", out)
	}
}

func TestDashboardRenderSections(t *testing.T) {
	c := NewCollector(0)
	c.Record(SampleFrom(testSnapshot()))
	d := New(c, &bytes.Buffer{}, 0)

	out := d.Render()
	for _, want := range []string{
		"Warehouse Dashboard",
		"Robot",
		"Tasks",
		"Environment",
		"(3.0, 4.0)",
		"moving",
		"72.5%",
		"42.3 m",
		"600 m2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestDashboardUpdateThrottled(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollector(0)
	d := New(c, &buf, time.Hour)

	d.Update(testSnapshot())
	d.Update(testSnapshot())

	if n := strings.Count(buf.String(), "Warehouse Dashboard"); n != 1 {
		t.Fatalf("rendered %d times within the interval, want 1", n)
	}
	if c.Len() != 2 {
		t.Fatalf("collector kept %d samples, want 2", c.Len())
	}
}

func TestDashboardStartConsumesBus(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollector(0)
	d := New(c, &buf, time.Hour)
	bus := eventbus.NewBuffered[any](16)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx, bus)

	bus.Publish(testSnapshot())
	bus.Publish("not a snapshot")
	bus.Publish(testSnapshot())

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("collector saw %d samples, want 2", c.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDashboardFinalReport(t *testing.T) {
	var buf bytes.Buffer
	d := New(NewCollector(0), &buf, 0)

	d.FinalReport(sim.Result{
		Ticks:          3000,
		SimSeconds:     300,
		TasksGenerated: 25,
		Robot: robot.Metrics{
			DistanceTraveled: 120.5,
			EnergyConsumed:   210.2,
			AverageSpeed:     0.4,
			Efficiency:       0.0951,
		},
		Queue: scheduler.Statistics{
			CompletedCount: 20,
			CanceledCount:  2,
			AvgWaitTime:    4.2,
			Throughput:     0.066,
		},
	})

	out := buf.String()
	for _, want := range []string{
		"Final Results",
		"120.5 m",
		"210.2 mAh",
		"tasks/mAh",
		"300.0 s in 3000 ticks",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
