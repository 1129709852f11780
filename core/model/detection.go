package model

// Detection is a perceived obstacle. Position carries sensor noise and is for
// display; planners rasterize the embedded obstacle's true bounds.
type Detection struct {
	Obstacle   Obstacle `json:"obstacle"`
	Position   Point    `json:"position"`
	Distance   float64  `json:"distance"`
	Confidence float64  `json:"confidence"` // 1 at the sensor, 0 at max range
}

// ItemDetection is a perceived item, with the same noise model as Detection.
type ItemDetection struct {
	Item       Item    `json:"item"`
	Position   Point   `json:"position"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}
