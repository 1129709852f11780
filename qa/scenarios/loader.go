package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/core/warehouse"
)

type TaskDef struct {
	Type     string  `yaml:"type"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Priority int     `yaml:"priority"`
	WeightKg float64 `yaml:"weight_kg,omitempty"`
	AtTick   int     `yaml:"at_tick"`
}

// ToTask builds the scripted task. Picks carry a synthetic item at the task
// position so the gripper has something to grasp; places drop wherever the
// task points.
func (d TaskDef) ToTask() model.Task {
	pos := model.Point{X: d.X, Y: d.Y}
	t := model.NewTask(parseTaskType(d.Type), pos)
	if d.Priority > 0 {
		t.Priority = d.Priority
	}
	switch t.Type {
	case model.TaskPick:
		weight := d.WeightKg
		if weight == 0 {
			weight = 1
		}
		t.Item = &model.Item{Type: "box", Position: pos, WeightKg: weight}
	case model.TaskPlace:
		t.Location = &pos
	}
	return t
}

// WarehouseDef overrides parts of the generated warehouse. Nil fields keep
// the defaults.
type WarehouseDef struct {
	WidthM          *float64 `yaml:"width,omitempty"`
	LengthM         *float64 `yaml:"length,omitempty"`
	NumRacks        *int     `yaml:"num_racks,omitempty"`
	NumItems        *int     `yaml:"num_items,omitempty"`
	ObstacleDensity *float64 `yaml:"obstacle_density,omitempty"`
	Chargers        *int     `yaml:"charging_stations,omitempty"`
}

func (d WarehouseDef) Apply(cfg *warehouse.Config) {
	if d.WidthM != nil {
		cfg.WidthM = *d.WidthM
	}
	if d.LengthM != nil {
		cfg.LengthM = *d.LengthM
	}
	if d.NumRacks != nil {
		cfg.NumRacks = *d.NumRacks
	}
	if d.NumItems != nil {
		cfg.NumItems = *d.NumItems
	}
	if d.ObstacleDensity != nil {
		cfg.ObstacleDensity = *d.ObstacleDensity
	}
	if d.Chargers != nil {
		cfg.ChargingStations = *d.Chargers
	}
}

type Expected struct {
	MinCompleted int `yaml:"min_completed"`
}

type Scenario struct {
	Name          string       `yaml:"name"`
	Description   string       `yaml:"description,omitempty"`
	Seed          int64        `yaml:"seed"`
	Warehouse     WarehouseDef `yaml:"warehouse,omitempty"`
	Tasks         []TaskDef    `yaml:"tasks"`
	DurationTicks int          `yaml:"duration_ticks"`
	Expected      Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func parseTaskType(t string) model.TaskType {
	switch t {
	case "pick":
		return model.TaskPick
	case "place":
		return model.TaskPlace
	case "charge":
		return model.TaskCharge
	default:
		return model.TaskPick
	}
}
