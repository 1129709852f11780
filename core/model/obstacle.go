package model

// Obstacle is a static or dropped object that blocks robot motion. Position is
// the center of its footprint.
type Obstacle struct {
	ID       int   `json:"id"`
	Position Point `json:"position"`
	Size     Size  `json:"size"`
}

// Bounds returns the axis-aligned footprint of the obstacle.
func (o Obstacle) Bounds() Bounds {
	return Bounds{
		Min: Point{X: o.Position.X - o.Size.Width/2, Y: o.Position.Y - o.Size.Length/2},
		Max: Point{X: o.Position.X + o.Size.Width/2, Y: o.Position.Y + o.Size.Length/2},
	}
}

// Contains reports whether p lies inside the obstacle footprint.
func (o Obstacle) Contains(p Point) bool {
	return o.Bounds().Contains(p)
}

// Distance returns the distance from p to the obstacle surface, zero if inside.
func (o Obstacle) Distance(p Point) float64 {
	return o.Bounds().Distance(p)
}

// BlocksSegment reports whether the segment a-b passes through the obstacle.
func (o Obstacle) BlocksSegment(a, b Point) bool {
	return o.Bounds().IntersectsSegment(a, b)
}
