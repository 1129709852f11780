package events

import "github.com/warebotics/warebot/core/model"

// RobotState is a per-tick snapshot of the robot.
type RobotState struct {
	Position       model.Point
	Battery        float64
	Status         string
	TraveledMeters float64
}

// Scan is published after a perception pass over the robot's surroundings.
type Scan struct {
	Obstacles int
	Items     int
}
