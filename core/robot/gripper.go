package robot

import "github.com/warebotics/warebot/core/model"

// GripperState is the actuation state of the gripper.
type GripperState int

const (
	GripperOpen GripperState = iota
	GripperClosed
	GripperMoving
)

// String returns a human-readable representation of the gripper state.
func (s GripperState) String() string {
	switch s {
	case GripperOpen:
		return "open"
	case GripperClosed:
		return "closed"
	case GripperMoving:
		return "moving"
	default:
		return "unknown"
	}
}

// Gripper handles item pickup and release with a weight limit.
type Gripper struct {
	capacityKg float64
	state      GripperState
	holding    *model.Item
}

// NewGripper returns an open gripper with the given capacity.
func NewGripper(capacityKg float64) *Gripper {
	return &Gripper{capacityKg: capacityKg, state: GripperOpen}
}

// Grasp closes the gripper around the item. It fails when the gripper is not
// open or the item exceeds the weight limit.
func (g *Gripper) Grasp(item *model.Item) bool {
	if g.state != GripperOpen || item == nil {
		return false
	}
	g.state = GripperMoving
	if item.WeightKg > g.capacityKg {
		g.state = GripperOpen
		return false
	}
	g.state = GripperClosed
	g.holding = item
	return true
}

// Release opens the gripper and drops the held item at location.
func (g *Gripper) Release(location model.Point) bool {
	if g.state != GripperClosed || g.holding == nil {
		return false
	}
	g.state = GripperMoving
	g.holding.Position = location
	g.holding = nil
	g.state = GripperOpen
	return true
}

// State returns the current actuation state.
func (g *Gripper) State() GripperState { return g.state }

// Holding returns the held item, nil when empty.
func (g *Gripper) Holding() *model.Item { return g.holding }
