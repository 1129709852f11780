// Package dashboard aggregates simulation frames into a bounded history and
// renders a live text panel plus an end-of-run report.
package dashboard

import (
	"context"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/core/robot"
	"github.com/warebotics/warebot/core/scheduler"
	"github.com/warebotics/warebot/internal/eventbus"
	"github.com/warebotics/warebot/sim"
)

// DefaultHistory is the number of samples kept when none is configured.
const DefaultHistory = 100

// EnvCounts are the environment figures shown alongside robot and task state.
type EnvCounts struct {
	Items     int     `json:"items"`
	Obstacles int     `json:"obstacles"`
	Racks     int     `json:"racks"`
	AreaM2    float64 `json:"area_m2"`
}

// Sample is one dashboard observation derived from a simulation frame.
type Sample struct {
	SimSeconds float64              `json:"sim_seconds"`
	Position   model.Point          `json:"position"`
	Status     string               `json:"status"`
	Robot      robot.Metrics        `json:"robot"`
	Queue      scheduler.Statistics `json:"queue"`
	Env        EnvCounts            `json:"env"`
}

// SampleFrom reduces a snapshot to a dashboard sample.
func SampleFrom(s sim.Snapshot) Sample {
	return Sample{
		SimSeconds: s.SimSeconds,
		Position:   s.Robot.Position,
		Status:     s.Robot.Status,
		Robot:      s.Robot.Metrics,
		Queue:      s.Stats,
		Env: EnvCounts{
			Items:     len(s.Env.Items),
			Obstacles: len(s.Env.Obstacles),
			Racks:     len(s.Env.Racks),
			AreaM2:    s.Env.WidthM * s.Env.LengthM,
		},
	}
}

// Summary describes the distribution of one metric over the kept history.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
}

// Collector keeps a bounded ring of samples. It is safe for concurrent use:
// the bus goroutine records while renderers and HTTP handlers read.
type Collector struct {
	mu      sync.RWMutex
	maxLen  int
	samples []Sample
}

// NewCollector returns a collector keeping up to maxLen samples. Zero or
// negative selects DefaultHistory.
func NewCollector(maxLen int) *Collector {
	if maxLen <= 0 {
		maxLen = DefaultHistory
	}
	return &Collector{maxLen: maxLen}
}

// Record appends a sample, dropping the oldest once the ring is full.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = append(c.samples, s)
	if len(c.samples) > c.maxLen {
		c.samples = c.samples[len(c.samples)-c.maxLen:]
	}
}

// Latest returns the most recent sample.
func (c *Collector) Latest() (Sample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.samples) == 0 {
		return Sample{}, false
	}
	return c.samples[len(c.samples)-1], true
}

// History returns a copy of the kept samples, oldest first.
func (c *Collector) History() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Sample(nil), c.samples...)
}

// Len returns the number of kept samples.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}

// Throughput returns completed tasks per simulated second over the trailing
// window. It compares the completion counters of the newest sample and the
// oldest sample still inside the window.
func (c *Collector) Throughput(windowS float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.samples) < 2 || windowS <= 0 {
		return 0
	}
	last := c.samples[len(c.samples)-1]
	cutoff := last.SimSeconds - windowS
	oldest := c.samples[0]
	for _, s := range c.samples {
		if s.SimSeconds >= cutoff {
			oldest = s
			break
		}
	}
	span := last.SimSeconds - oldest.SimSeconds
	if span <= 0 {
		return 0
	}
	return float64(last.Queue.CompletedCount-oldest.Queue.CompletedCount) / span
}

// Series extracts one metric across the history, oldest first.
func (c *Collector) Series(field func(Sample) float64) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]float64, len(c.samples))
	for i, s := range c.samples {
		out[i] = field(s)
	}
	return out
}

// StartCollector consumes snapshot frames from the bus into c until the
// context is canceled. Use it when history is wanted without a rendering
// dashboard; a Dashboard started on the same collector records frames itself.
func StartCollector(ctx context.Context, bus *eventbus.Bus[any], c *Collector) {
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if snap, isSnap := ev.(sim.Snapshot); isSnap {
					c.Record(SampleFrom(snap))
				}
			}
		}
	}()
}

// Describe summarizes one metric over the history. The second result is false
// when no samples are kept.
func (c *Collector) Describe(field func(Sample) float64) (Summary, bool) {
	values := c.Series(field)
	if len(values) == 0 {
		return Summary{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	sum := Summary{
		Mean:   stat.Mean(values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(values) > 1 {
		sum.Std = stat.StdDev(values, nil)
	}
	return sum, true
}
