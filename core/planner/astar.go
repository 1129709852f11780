package planner

import (
	"container/heap"
	"math"

	"github.com/warebotics/warebot/core/logger"
	"github.com/warebotics/warebot/core/model"
)

// Planner runs A* queries against a shared occupancy grid. It holds no
// per-call state, so a single instance serves any number of sequential calls.
type Planner struct {
	grid *GridMap
	cfg  Config
	log  logger.Logger
}

// New returns a planner over the given grid.
func New(grid *GridMap, cfg Config, log logger.Logger) *Planner {
	return &Planner{grid: grid, cfg: cfg, log: log}
}

// Grid returns the static occupancy grid the planner was built with.
func (p *Planner) Grid() *GridMap { return p.grid }

// Plan computes a simplified waypoint path from start to goal. Detections are
// rasterized onto a scratch copy of the grid for this call only. A nil result
// means no path exists: the start or goal cell is blocked, the search
// exhausted the frontier, or the expansion bound was hit. Callers that need
// motion anyway may fall back to the direct [start, goal] segment.
func (p *Planner) Plan(start, goal model.Point, detections []model.Detection) []model.Point {
	work := p.grid.work()
	work.rasterize(p.grid, detections)

	startC := p.grid.CellOf(start)
	goalC := p.grid.CellOf(goal)
	if work.occupied(startC) || work.occupied(goalC) {
		p.log.Debugf("plan rejected: start %v or goal %v cell blocked", startC, goalC)
		return nil
	}

	cells := p.search(work, startC, goalC)
	if cells == nil {
		return nil
	}
	cells = simplifyPath(work, cells)

	path := make([]model.Point, len(cells))
	for i, c := range cells {
		path[i] = p.grid.CenterOf(c)
	}
	return path
}

// node is an A* search node. index is the heap slot, maintained by the heap
// callbacks so decrease-key can use heap.Fix.
type node struct {
	cell   Cell
	g      float64
	f      float64
	seq    uint64
	index  int
	closed bool
	parent *node
}

// frontier orders nodes by f, then by admission sequence so equal-cost ties
// resolve in insertion order and runs stay deterministic.
type frontier []*node

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q frontier) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *frontier) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *frontier) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// moves enumerates the 8-connected neighborhood with step costs in cell units.
var moves = [8]struct {
	dx, dy int
	cost   float64
}{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

func heuristic(a, b Cell) float64 {
	return math.Hypot(float64(b.CX-a.CX), float64(b.CY-a.CY))
}

// search returns the cell path from start to goal inclusive, or nil when the
// goal is unreachable within the expansion budget. Each cell is expanded at
// most once.
func (p *Planner) search(w *workGrid, start, goal Cell) []Cell {
	var seq uint64
	startN := &node{cell: start, f: heuristic(start, goal)}
	nodes := map[Cell]*node{start: startN}
	open := frontier{startN}
	expansions := 0

	for open.Len() > 0 {
		cur := heap.Pop(&open).(*node)
		if cur.cell == goal {
			return reconstruct(cur)
		}
		cur.closed = true

		if p.cfg.MaxExpansions > 0 && expansions >= p.cfg.MaxExpansions {
			p.log.Warnf("plan aborted after %d expansions", expansions)
			return nil
		}
		expansions++

		for _, m := range moves {
			nc := Cell{CX: cur.cell.CX + m.dx, CY: cur.cell.CY + m.dy}
			if !w.inBounds(nc) || w.occupied(nc) {
				continue
			}
			ng := cur.g + m.cost
			nb, seen := nodes[nc]
			if !seen {
				seq++
				nb = &node{cell: nc, g: ng, f: ng + heuristic(nc, goal), seq: seq, parent: cur}
				nodes[nc] = nb
				heap.Push(&open, nb)
				continue
			}
			if nb.closed || ng >= nb.g {
				continue
			}
			nb.g = ng
			nb.f = ng + heuristic(nc, goal)
			nb.parent = cur
			heap.Fix(&open, nb.index)
		}
	}
	return nil
}

func reconstruct(n *node) []Cell {
	var cells []Cell
	for ; n != nil; n = n.parent {
		cells = append(cells, n.cell)
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// simplifyPath keeps the first cell and then repeatedly jumps to the farthest
// cell still reachable along a clear Bresenham line. The cursor never moves
// backward, so the pass is at worst quadratic in the path length.
func simplifyPath(w *workGrid, cells []Cell) []Cell {
	if len(cells) <= 2 {
		return cells
	}
	out := []Cell{cells[0]}
	cur := 0
	for cur < len(cells)-1 {
		next := cur + 1
		for j := len(cells) - 1; j > cur; j-- {
			if w.lineClear(cells[cur], cells[j]) {
				next = j
				break
			}
		}
		out = append(out, cells[next])
		cur = next
	}
	return out
}
