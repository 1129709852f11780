package planner

import (
	"math"
	"testing"

	"github.com/warebotics/warebot/core/model"
)

func TestNewGridMapValidation(t *testing.T) {
	if _, err := NewGridMap(0, 10, 0.1, nil); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := NewGridMap(10, 10, 0, nil); err == nil {
		t.Fatalf("expected error for zero resolution")
	}
	if _, err := NewGridMap(10, 10, 0.1, make([]uint8, 5)); err == nil {
		t.Fatalf("expected error for short bitmap")
	}
	if _, err := NewGridMap(10, 10, 0.1, make([]uint8, 100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewGridMapCopiesBitmap(t *testing.T) {
	bitmap := make([]uint8, 9)
	g, err := NewGridMap(3, 3, 1, bitmap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bitmap[4] = 1
	if g.Occupied(Cell{CX: 1, CY: 1}) {
		t.Fatalf("grid should not alias the caller bitmap")
	}
}

func TestCellOfFloorsAndClamps(t *testing.T) {
	g, _ := NewGridMap(10, 10, 0.1, nil)
	if c := g.CellOf(model.Point{X: 0.25, Y: 0.37}); c != (Cell{CX: 2, CY: 3}) {
		t.Fatalf("expected (2,3) got %v", c)
	}
	if c := g.CellOf(model.Point{X: -5, Y: -5}); c != (Cell{CX: 0, CY: 0}) {
		t.Fatalf("negative coordinates should clamp to origin, got %v", c)
	}
	if c := g.CellOf(model.Point{X: 99, Y: 99}); c != (Cell{CX: 9, CY: 9}) {
		t.Fatalf("far coordinates should clamp to last cell, got %v", c)
	}
}

func TestCenterOf(t *testing.T) {
	g, _ := NewGridMap(10, 10, 0.1, nil)
	p := g.CenterOf(Cell{CX: 2, CY: 3})
	if math.Abs(p.X-0.25) > 1e-9 || math.Abs(p.Y-0.35) > 1e-9 {
		t.Fatalf("expected (0.25,0.35) got %+v", p)
	}
}

func TestOccupiedOutOfBounds(t *testing.T) {
	g, _ := NewGridMap(4, 4, 1, nil)
	if !g.Occupied(Cell{CX: -1, CY: 0}) || !g.Occupied(Cell{CX: 0, CY: 4}) {
		t.Fatalf("out-of-bounds cells must read as blocked")
	}
}

func TestWalkLineExcludesEnd(t *testing.T) {
	var visited []Cell
	walkLine(Cell{CX: 0, CY: 0}, Cell{CX: 3, CY: 0}, func(c Cell) bool {
		visited = append(visited, c)
		return true
	})
	want := []Cell{{0, 0}, {1, 0}, {2, 0}}
	if len(visited) != len(want) {
		t.Fatalf("expected %d cells got %v", len(want), visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("cell %d: expected %v got %v", i, want[i], visited[i])
		}
	}
}
