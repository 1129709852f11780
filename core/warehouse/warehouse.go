// Package warehouse generates and owns the simulated environment: the rack
// layout and its occupancy grid, obstacles, items and charging stations, plus
// the random task source feeding the scheduler. Generation is fully driven by
// an injected rand source, so a fixed seed reproduces the same warehouse.
package warehouse

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/samber/lo"

	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/core/planner"
)

// rackClusterRadius merges adjacent occupied cells into one rack access point.
const rackClusterRadius = 1.0

// Warehouse is the generated environment. All slices are fixed after New;
// item positions may move when the robot places them elsewhere.
type Warehouse struct {
	cfg       Config
	grid      *planner.GridMap
	racks     []model.Point
	obstacles []model.Obstacle
	items     []model.Item
	chargers  []model.Point
}

// New generates a warehouse from the configuration, drawing all randomness
// from rng.
func New(cfg Config, rng *rand.Rand) (*Warehouse, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("warehouse config: %w", err)
	}

	w := &Warehouse{cfg: cfg}
	bitmap, cellsW, cellsH := cfg.rackBitmap()
	grid, err := planner.NewGridMap(cellsW, cellsH, cfg.GridResolution, bitmap)
	if err != nil {
		return nil, fmt.Errorf("warehouse grid: %w", err)
	}
	w.grid = grid
	w.racks = clusterRackPoints(bitmap, cellsW, cellsH, cfg.GridResolution)
	w.obstacles = w.generateObstacles(rng, bitmap, cellsW, cellsH)
	w.items = w.generateItems(rng)
	w.chargers = w.generateChargers(rng)
	return w, nil
}

// rackBitmap rasterizes the rack rows onto an occupancy bitmap. Racks stand in
// two rows at one third and two thirds of the warehouse length, evenly spread
// around the middle of the width with one aisle between neighbors.
func (c Config) rackBitmap() (bitmap []uint8, cellsW, cellsH int) {
	cellsW = int(c.WidthM / c.GridResolution)
	cellsH = int(c.LengthM / c.GridResolution)
	bitmap = make([]uint8, cellsW*cellsH)

	racksPerRow := c.NumRacks / 2
	pitch := c.RackWidthM + c.AisleWidthM
	rackW := int(c.RackWidthM / c.GridResolution)
	rackL := int(c.RackLengthM / c.GridResolution)
	rowStarts := []int{
		int(c.LengthM / 3 / c.GridResolution),
		int(2 * c.LengthM / 3 / c.GridResolution),
	}

	for i := 0; i < racksPerRow; i++ {
		xm := c.WidthM/2 - float64(racksPerRow)*pitch/2 + float64(i)*pitch
		xStart := int(xm / c.GridResolution)
		for _, yStart := range rowStarts {
			for cy := yStart; cy < yStart+rackL && cy < cellsH; cy++ {
				for cx := xStart; cx < xStart+rackW && cx < cellsW; cx++ {
					if cx >= 0 && cy >= 0 {
						bitmap[cy*cellsW+cx] = 1
					}
				}
			}
		}
	}
	return bitmap, cellsW, cellsH
}

// clusterRackPoints reduces the occupied rack cells to access points spaced
// about one cluster radius apart, scanning in row-major order.
func clusterRackPoints(bitmap []uint8, cellsW, cellsH int, res float64) []model.Point {
	var centers []model.Point
	for cy := 0; cy < cellsH; cy++ {
		for cx := 0; cx < cellsW; cx++ {
			if bitmap[cy*cellsW+cx] != 1 {
				continue
			}
			p := model.Point{X: float64(cx) * res, Y: float64(cy) * res}
			isNew := true
			for _, c := range centers {
				if c.Dist(p) < rackClusterRadius {
					isNew = false
					break
				}
			}
			if isNew {
				centers = append(centers, p)
			}
		}
	}
	return centers
}

// generateObstacles scatters box obstacles over the free floor. The obstacle
// count follows the configured density of the free area; each obstacle gets
// ten placement attempts before being skipped.
func (w *Warehouse) generateObstacles(rng *rand.Rand, bitmap []uint8, cellsW, cellsH int) []model.Obstacle {
	occupiedCells := 0
	for _, v := range bitmap {
		if v == 1 {
			occupiedCells++
		}
	}
	res := w.cfg.GridResolution
	freeArea := w.cfg.WidthM*w.cfg.LengthM - float64(occupiedCells)*res*res
	count := int(freeArea * w.cfg.ObstacleDensity)

	var obstacles []model.Obstacle
	for i := 0; i < count; i++ {
		for attempt := 0; attempt < 10; attempt++ {
			p := model.Point{
				X: rng.Float64() * w.cfg.WidthM,
				Y: rng.Float64() * w.cfg.LengthM,
			}
			if positionOccupied(p, bitmap, cellsW, cellsH, res, obstacles) {
				continue
			}
			obstacles = append(obstacles, model.Obstacle{
				ID:       i,
				Position: p,
				Size: model.Size{
					Width:  0.3 + rng.Float64()*0.7,
					Length: 0.3 + rng.Float64()*0.7,
					Height: 0.5 + rng.Float64(),
				},
			})
			break
		}
	}
	return obstacles
}

func positionOccupied(p model.Point, bitmap []uint8, cellsW, cellsH int, res float64, obstacles []model.Obstacle) bool {
	cx := int(p.X / res)
	cy := int(p.Y / res)
	if cx >= 0 && cx < cellsW && cy >= 0 && cy < cellsH && bitmap[cy*cellsW+cx] == 1 {
		return true
	}
	for _, o := range obstacles {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

// generateItems scatters items around rack access points with a small lateral
// and a larger longitudinal offset.
func (w *Warehouse) generateItems(rng *rand.Rand) []model.Item {
	items := make([]model.Item, 0, w.cfg.NumItems)
	if len(w.racks) == 0 {
		return items
	}
	for i := 0; i < w.cfg.NumItems; i++ {
		rack := w.racks[rng.Intn(len(w.racks))]
		items = append(items, model.Item{
			ID:   i,
			Type: fmt.Sprintf("type_%d", 1+rng.Intn(w.cfg.ItemTypes)),
			Position: model.Point{
				X: rack.X + (rng.Float64()*0.8 - 0.4),
				Y: rack.Y + (rng.Float64()*4 - 2),
			},
			WeightKg: 0.1 + rng.Float64()*3.9,
			Size: model.Size{
				Width:  0.1 + rng.Float64()*0.4,
				Length: 0.1 + rng.Float64()*0.4,
				Height: 0.1 + rng.Float64()*0.4,
			},
		})
	}
	return items
}

// generateChargers puts charging stations on the warehouse edges, cycling
// top, right, bottom, left.
func (w *Warehouse) generateChargers(rng *rand.Rand) []model.Point {
	chargers := make([]model.Point, 0, w.cfg.ChargingStations)
	for i := 0; i < w.cfg.ChargingStations; i++ {
		var p model.Point
		switch i % 4 {
		case 0:
			p = model.Point{X: 1 + rng.Float64()*(w.cfg.WidthM-2), Y: 1}
		case 1:
			p = model.Point{X: w.cfg.WidthM - 1, Y: 1 + rng.Float64()*(w.cfg.LengthM-2)}
		case 2:
			p = model.Point{X: 1 + rng.Float64()*(w.cfg.WidthM-2), Y: w.cfg.LengthM - 1}
		default:
			p = model.Point{X: 1, Y: 1 + rng.Float64()*(w.cfg.LengthM-2)}
		}
		chargers = append(chargers, p)
	}
	return chargers
}

// Config returns the generation parameters.
func (w *Warehouse) Config() Config { return w.cfg }

// Grid returns the static occupancy grid of the rack layout.
func (w *Warehouse) Grid() *planner.GridMap { return w.grid }

// Racks returns the rack access points.
func (w *Warehouse) Racks() []model.Point { return w.racks }

// Obstacles returns the generated obstacles.
func (w *Warehouse) Obstacles() []model.Obstacle { return w.obstacles }

// Items returns all items. The backing array is stable, so indexes remain
// valid for the lifetime of the warehouse.
func (w *Warehouse) Items() []model.Item { return w.items }

// Item returns a pointer to the item with the given index for in-place
// updates, nil when out of range.
func (w *Warehouse) Item(i int) *model.Item {
	if i < 0 || i >= len(w.items) {
		return nil
	}
	return &w.items[i]
}

// Chargers returns the charging station positions.
func (w *Warehouse) Chargers() []model.Point { return w.chargers }

// Start returns the robot start position.
func (w *Warehouse) Start() model.Point { return w.cfg.RobotStart }

// ItemsNear returns the items within radius of p, by center distance.
func (w *Warehouse) ItemsNear(p model.Point, radius float64) []model.Item {
	return lo.Filter(w.items, func(it model.Item, _ int) bool {
		return it.Position.Dist(p) <= radius
	})
}

// ObstaclesNear returns the obstacles within radius of p, by center distance.
func (w *Warehouse) ObstaclesNear(p model.Point, radius float64) []model.Obstacle {
	return lo.Filter(w.obstacles, func(o model.Obstacle, _ int) bool {
		return o.Position.Dist(p) <= radius
	})
}

// NearestCharger returns the charging station closest to p. The second result
// is false when no stations exist.
func (w *Warehouse) NearestCharger(p model.Point) (model.Point, bool) {
	if len(w.chargers) == 0 {
		return model.Point{}, false
	}
	best := w.chargers[0]
	bestDist := math.Inf(1)
	for _, c := range w.chargers {
		if d := c.Dist(p); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}
