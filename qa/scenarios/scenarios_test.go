package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/warebotics/warebot/core/model"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestScenarioDeterminism(t *testing.T) {
	sc, err := Load("pick_and_place.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Ticks != b.Ticks {
		t.Errorf("ticks diverged: %d vs %d", a.Ticks, b.Ticks)
	}
	if a.Queue.CompletedCount != b.Queue.CompletedCount {
		t.Errorf("completed diverged: %d vs %d", a.Queue.CompletedCount, b.Queue.CompletedCount)
	}
	if a.Queue.CanceledCount != b.Queue.CanceledCount {
		t.Errorf("canceled diverged: %d vs %d", a.Queue.CanceledCount, b.Queue.CanceledCount)
	}
	if a.Robot.TasksCompleted != b.Robot.TasksCompleted {
		t.Errorf("robot tasks diverged: %d vs %d", a.Robot.TasksCompleted, b.Robot.TasksCompleted)
	}
	if a.Robot.DistanceTraveled != b.Robot.DistanceTraveled {
		t.Errorf("distance diverged: %v vs %v", a.Robot.DistanceTraveled, b.Robot.DistanceTraveled)
	}
}

func TestParseTaskType(t *testing.T) {
	cases := map[string]model.TaskType{
		"pick":    model.TaskPick,
		"place":   model.TaskPlace,
		"charge":  model.TaskCharge,
		"unknown": model.TaskPick,
	}
	for s, want := range cases {
		if got := parseTaskType(s); got != want {
			t.Errorf("%s parsed as %v, want %v", s, got, want)
		}
	}
}

func TestTaskDefToTask(t *testing.T) {
	pick := TaskDef{Type: "pick", X: 1, Y: 2, Priority: 4}.ToTask()
	if pick.Item == nil {
		t.Fatal("pick task without item")
	}
	if pick.Item.Position != (model.Point{X: 1, Y: 2}) {
		t.Errorf("item position %v", pick.Item.Position)
	}
	if pick.Priority != 4 {
		t.Errorf("priority %d", pick.Priority)
	}
	place := TaskDef{Type: "place", X: 3, Y: 4}.ToTask()
	if place.Location == nil || *place.Location != (model.Point{X: 3, Y: 4}) {
		t.Errorf("place location %v", place.Location)
	}
	charge := TaskDef{Type: "charge", X: 5, Y: 6}.ToTask()
	if charge.Item != nil || charge.Location != nil {
		t.Error("charge task carries pick/place payload")
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
