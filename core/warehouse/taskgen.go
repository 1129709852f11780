package warehouse

import (
	"math/rand"

	"github.com/warebotics/warebot/core/model"
)

// Task mix of the generator. Charge tasks take the remainder.
const (
	pickShare  = 0.45
	placeShare = 0.45
)

// Generator produces random warehouse tasks: item picks, placements at rack
// points and routine charging trips. All randomness comes from the injected
// source.
type Generator struct {
	w   *Warehouse
	rng *rand.Rand
}

// NewGenerator returns a task generator over the warehouse.
func NewGenerator(w *Warehouse, rng *rand.Rand) *Generator {
	return &Generator{w: w, rng: rng}
}

// Next generates one task. It reports false when the warehouse lacks the
// ingredients for the drawn type, such as a charge task with no stations.
func (g *Generator) Next() (model.Task, bool) {
	switch draw := g.rng.Float64(); {
	case draw < pickShare:
		return g.pickTask()
	case draw < pickShare+placeShare:
		return g.placeTask()
	default:
		return g.chargeTask()
	}
}

// Poll generates a task with probability rate*dt, modelling arrivals at the
// configured tasks-per-second rate over a tick of dt seconds.
func (g *Generator) Poll(dt float64) (model.Task, bool) {
	if g.rng.Float64() >= g.w.cfg.TaskRatePerSecond*dt {
		return model.Task{}, false
	}
	return g.Next()
}

// Batch generates up to n tasks.
func (g *Generator) Batch(n int) []model.Task {
	tasks := make([]model.Task, 0, n)
	for i := 0; i < n; i++ {
		if t, ok := g.Next(); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (g *Generator) pickTask() (model.Task, bool) {
	if len(g.w.items) == 0 {
		return model.Task{}, false
	}
	item := g.w.Item(g.rng.Intn(len(g.w.items)))
	t := model.NewTask(model.TaskPick, item.Position)
	t.Item = item
	return t, true
}

func (g *Generator) placeTask() (model.Task, bool) {
	if len(g.w.racks) == 0 {
		return model.Task{}, false
	}
	rack := g.w.racks[g.rng.Intn(len(g.w.racks))]
	dest := model.Point{
		X: rack.X + (g.rng.Float64()*0.8 - 0.4),
		Y: rack.Y + (g.rng.Float64()*4 - 2),
	}
	t := model.NewTask(model.TaskPlace, dest)
	t.Location = &dest
	return t, true
}

func (g *Generator) chargeTask() (model.Task, bool) {
	if len(g.w.chargers) == 0 {
		return model.Task{}, false
	}
	t := model.NewTask(model.TaskCharge, g.w.chargers[g.rng.Intn(len(g.w.chargers))])
	return t, true
}
