// Package vision simulates the robot's perception stack: a range-gated noisy
// detector and a confusion-matrix classifier. All randomness flows through an
// injected source so runs are reproducible.
package vision

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/warebotics/warebot/core/model"
)

// Noise applied to detected positions, as a fraction of the true distance.
const (
	itemNoiseFactor     = 0.05
	obstacleNoiseFactor = 0.03
)

// Config defines perception parameters.
type Config struct {
	Range       float64 `json:"range" yaml:"range"`             // m
	Probability float64 `json:"probability" yaml:"probability"` // detection probability in range
	Accuracy    float64 `json:"accuracy" yaml:"accuracy"`       // classifier base accuracy
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.Range == 0 {
		c.Range = 5.0
	}
	if c.Probability == 0 {
		c.Probability = 0.95
	}
	if c.Accuracy == 0 {
		c.Accuracy = 0.9
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Range <= 0 {
		return fmt.Errorf("range must be positive, got %v", c.Range)
	}
	if c.Probability <= 0 || c.Probability > 1 {
		return fmt.Errorf("probability must be in (0,1], got %v", c.Probability)
	}
	if c.Accuracy <= 0 || c.Accuracy > 1 {
		return fmt.Errorf("accuracy must be in (0,1], got %v", c.Accuracy)
	}
	return nil
}

// Detector perceives items and obstacles around the robot with range gating,
// detection probability and distance-proportional Gaussian position noise.
type Detector struct {
	cfg Config
	rng *rand.Rand
}

// NewDetector returns a detector drawing randomness from rng.
func NewDetector(cfg Config, rng *rand.Rand) *Detector {
	cfg.SetDefaults()
	return &Detector{cfg: cfg, rng: rng}
}

// DetectItems returns the items visible from the robot position. Confidence
// falls linearly from 1 at the sensor to 0 at maximum range.
func (d *Detector) DetectItems(robot model.Point, items []model.Item) []model.ItemDetection {
	var out []model.ItemDetection
	for _, item := range items {
		dist := robot.Dist(item.Position)
		if dist > d.cfg.Range {
			continue
		}
		if d.rng.Float64() >= d.cfg.Probability {
			continue
		}
		out = append(out, model.ItemDetection{
			Item:       item,
			Position:   d.noisy(item.Position, dist*itemNoiseFactor),
			Distance:   dist,
			Confidence: confidence(dist, d.cfg.Range),
		})
	}
	return out
}

// DetectObstacles returns the obstacles visible from the robot position.
// Distance is to the obstacle surface, and the detection probability shrinks
// with distance so far obstacles are missed more often.
func (d *Detector) DetectObstacles(robot model.Point, obstacles []model.Obstacle) []model.Detection {
	var out []model.Detection
	for _, o := range obstacles {
		dist := o.Distance(robot)
		if dist > d.cfg.Range {
			continue
		}
		p := d.cfg.Probability * (1 - dist/d.cfg.Range)
		if d.rng.Float64() >= p {
			continue
		}
		out = append(out, model.Detection{
			Obstacle:   o,
			Position:   d.noisy(o.Position, dist*obstacleNoiseFactor),
			Distance:   dist,
			Confidence: confidence(dist, d.cfg.Range),
		})
	}
	return out
}

func (d *Detector) noisy(p model.Point, sigma float64) model.Point {
	return model.Point{
		X: p.X + d.rng.NormFloat64()*sigma,
		Y: p.Y + d.rng.NormFloat64()*sigma,
	}
}

func confidence(dist, rng float64) float64 {
	return math.Max(0, 1-dist/rng)
}
