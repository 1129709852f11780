package planner

import (
	"fmt"
	"math"

	"github.com/warebotics/warebot/core/model"
)

// Cell addresses one grid square. CX grows along world X, CY along world Y.
type Cell struct {
	CX int `json:"cx"`
	CY int `json:"cy"`
}

// GridMap is an immutable occupancy grid: 0 free, 1 occupied, row-major.
// Resolution is the side length of one cell in meters.
type GridMap struct {
	width      int
	height     int
	resolution float64
	cells      []uint8
}

// NewGridMap builds a grid of width x height cells. The occupied bitmap may be
// nil for an all-free grid; otherwise it must hold width*height entries and is
// copied, so the caller keeps ownership of its slice.
func NewGridMap(width, height int, resolution float64, occupied []uint8) (*GridMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("grid resolution must be positive, got %v", resolution)
	}
	g := &GridMap{width: width, height: height, resolution: resolution}
	g.cells = make([]uint8, width*height)
	if occupied != nil {
		if len(occupied) != width*height {
			return nil, fmt.Errorf("occupancy bitmap has %d cells, want %d", len(occupied), width*height)
		}
		copy(g.cells, occupied)
	}
	return g, nil
}

// Width returns the number of columns.
func (g *GridMap) Width() int { return g.width }

// Height returns the number of rows.
func (g *GridMap) Height() int { return g.height }

// Resolution returns the cell size in meters.
func (g *GridMap) Resolution() float64 { return g.resolution }

// InBounds reports whether c addresses a cell of the grid.
func (g *GridMap) InBounds(c Cell) bool {
	return c.CX >= 0 && c.CX < g.width && c.CY >= 0 && c.CY < g.height
}

// Occupied reports whether the cell is blocked. Out-of-bounds cells count as
// blocked.
func (g *GridMap) Occupied(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.cells[c.CY*g.width+c.CX] == 1
}

// CellOf maps a world position to its cell, clamped to the grid borders.
func (g *GridMap) CellOf(p model.Point) Cell {
	cx := int(math.Floor(p.X / g.resolution))
	cy := int(math.Floor(p.Y / g.resolution))
	return Cell{CX: clamp(cx, 0, g.width-1), CY: clamp(cy, 0, g.height-1)}
}

// CenterOf maps a cell to the world position of its center.
func (g *GridMap) CenterOf(c Cell) model.Point {
	return model.Point{
		X: (float64(c.CX) + 0.5) * g.resolution,
		Y: (float64(c.CY) + 0.5) * g.resolution,
	}
}

// FreeCells returns the number of unblocked cells.
func (g *GridMap) FreeCells() int {
	n := 0
	for _, v := range g.cells {
		if v == 0 {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// work returns a mutable snapshot used for a single planning call.
func (g *GridMap) work() *workGrid {
	w := &workGrid{width: g.width, height: g.height, cells: make([]uint8, len(g.cells))}
	copy(w.cells, g.cells)
	return w
}

// workGrid is the per-call scratch grid: the static map plus rasterized
// detections.
type workGrid struct {
	width  int
	height int
	cells  []uint8
}

func (w *workGrid) inBounds(c Cell) bool {
	return c.CX >= 0 && c.CX < w.width && c.CY >= 0 && c.CY < w.height
}

func (w *workGrid) occupied(c Cell) bool {
	return w.cells[c.CY*w.width+c.CX] == 1
}

// markRect blocks every cell in the inclusive rectangle a..b. Both corners
// must already be clamped to the grid.
func (w *workGrid) markRect(a, b Cell) {
	for cy := a.CY; cy <= b.CY; cy++ {
		for cx := a.CX; cx <= b.CX; cx++ {
			w.cells[cy*w.width+cx] = 1
		}
	}
}

// rasterize blocks the true bounding box of every detected obstacle. Boxes
// reaching past the border are clamped, never dropped.
func (w *workGrid) rasterize(g *GridMap, detections []model.Detection) {
	for _, d := range detections {
		b := d.Obstacle.Bounds()
		w.markRect(g.CellOf(b.Min), g.CellOf(b.Max))
	}
}

// lineClear walks the Bresenham line from a to b and reports whether every
// cell before b is free. The end cell itself is not inspected.
func (w *workGrid) lineClear(a, b Cell) bool {
	free := true
	walkLine(a, b, func(c Cell) bool {
		if w.occupied(c) {
			free = false
			return false
		}
		return true
	})
	return free
}

// walkLine visits the Bresenham cells from a towards b, starting at a and
// stopping before b. The walk aborts when fn returns false.
func walkLine(a, b Cell, fn func(Cell) bool) {
	x0, y0 := a.CX, a.CY
	x1, y1 := b.CX, b.CY
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for x0 != x1 || y0 != y1 {
		if !fn(Cell{CX: x0, CY: y0}) {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
