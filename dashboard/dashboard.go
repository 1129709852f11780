package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/warebotics/warebot/internal/eventbus"
	"github.com/warebotics/warebot/sim"
)

// DefaultUpdateInterval throttles live rendering to once per second.
const DefaultUpdateInterval = time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD93D")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6BCB77")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0AEC0"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE"))

	batteryOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50")).
			Bold(true)

	batteryWarnStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F7B801")).
				Bold(true)

	batteryCritStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B")).
				Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(32)

	reportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// Dashboard renders collector state as a styled text panel.
type Dashboard struct {
	collector *Collector
	out       io.Writer
	interval  time.Duration
	last      time.Time
}

// New returns a dashboard writing to out. A non-positive interval selects
// DefaultUpdateInterval.
func New(c *Collector, out io.Writer, interval time.Duration) *Dashboard {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	return &Dashboard{collector: c, out: out, interval: interval}
}

// Update records the frame and redraws the panel when the update interval has
// elapsed since the last draw.
func (d *Dashboard) Update(snap sim.Snapshot) {
	d.collector.Record(SampleFrom(snap))
	now := time.Now()
	if now.Sub(d.last) < d.interval {
		return
	}
	d.last = now
	fmt.Fprintln(d.out, d.Render())
}

// Start consumes snapshot frames from the bus until the context is canceled.
func (d *Dashboard) Start(ctx context.Context, bus *eventbus.Bus[any]) {
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
					d.Update(snap)
				}
			}
		}
	}()
}

// Render builds the full panel from the latest sample.
func (d *Dashboard) Render() string {
	s, ok := d.collector.Latest()
	if !ok {
		return titleStyle.Render("Warehouse Dashboard") + "\n" +
			labelStyle.Render("waiting for first frame")
	}

	header := titleStyle.Render("Warehouse Dashboard") + "  " +
		labelStyle.Render(fmt.Sprintf("t=%.1fs", s.SimSeconds))

	robotPanel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Robot"),
		row("Position", fmt.Sprintf("(%.1f, %.1f)", s.Position.X, s.Position.Y)),
		row("Status", s.Status),
		batteryRow(s.Robot.BatteryPct),
		row("Distance", fmt.Sprintf("%.1f m", s.Robot.DistanceTraveled)),
		row("Energy", fmt.Sprintf("%.1f mAh", s.Robot.EnergyConsumed)),
		row("Tasks done", fmt.Sprintf("%d", s.Robot.TasksCompleted)),
		row("Collisions", fmt.Sprintf("%d", s.Robot.Collisions)),
	))

	taskPanel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Tasks"),
		row("Completed", fmt.Sprintf("%d", s.Queue.CompletedCount)),
		row("Pending", fmt.Sprintf("%d", s.Queue.PendingCount)),
		row("Canceled", fmt.Sprintf("%d", s.Queue.CanceledCount)),
		row("Avg wait", fmt.Sprintf("%.1f s", s.Queue.AvgWaitTime)),
		row("Avg service", fmt.Sprintf("%.1f s", s.Queue.AvgCompletionTime)),
		row("Rate 1m", fmt.Sprintf("%.2f /s", d.collector.Throughput(60))),
		row("Rate 5m", fmt.Sprintf("%.2f /s", d.collector.Throughput(300))),
	))

	envPanel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Environment"),
		row("Items", fmt.Sprintf("%d", s.Env.Items)),
		row("Obstacles", fmt.Sprintf("%d", s.Env.Obstacles)),
		row("Racks", fmt.Sprintf("%d", s.Env.Racks)),
		row("Floor", fmt.Sprintf("%.0f m2", s.Env.AreaM2)),
	))

	body := lipgloss.JoinHorizontal(lipgloss.Top, robotPanel, taskPanel, envPanel)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// FinalReport writes the end-of-run summary in the same style as the live
// panel.
func (d *Dashboard) FinalReport(res sim.Result) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Final Results"))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Robot"))
	b.WriteString("\n")
	b.WriteString(row("Distance", fmt.Sprintf("%.1f m", res.Robot.DistanceTraveled)))
	b.WriteString("\n")
	b.WriteString(row("Energy", fmt.Sprintf("%.1f mAh", res.Robot.EnergyConsumed)))
	b.WriteString("\n")
	b.WriteString(row("Avg speed", fmt.Sprintf("%.2f m/s", res.Robot.AverageSpeed)))
	b.WriteString("\n")
	b.WriteString(row("Collisions", fmt.Sprintf("%d", res.Robot.Collisions)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(row("Generated", fmt.Sprintf("%d", res.TasksGenerated)))
	b.WriteString("\n")
	b.WriteString(row("Completed", fmt.Sprintf("%d", res.Queue.CompletedCount)))
	b.WriteString("\n")
	b.WriteString(row("Canceled", fmt.Sprintf("%d", res.Queue.CanceledCount)))
	b.WriteString("\n")
	b.WriteString(row("Avg wait", fmt.Sprintf("%.1f s", res.Queue.AvgWaitTime)))
	b.WriteString("\n")
	b.WriteString(row("Throughput", fmt.Sprintf("%.3f /s", res.Queue.Throughput)))
	b.WriteString("\n")

	b.WriteString(row("Efficiency", fmt.Sprintf("%.4f tasks/mAh", res.Robot.Efficiency)))
	b.WriteString("\n")
	b.WriteString(row("Sim time", fmt.Sprintf("%.1f s in %d ticks", res.SimSeconds, res.Ticks)))
	b.WriteString("\n")

	fmt.Fprintln(d.out, reportStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value)
}

func batteryRow(pct float64) string {
	style := batteryOKStyle
	switch {
	case pct < 20:
		style = batteryCritStyle
	case pct < 50:
		style = batteryWarnStyle
	}
	return labelStyle.Render(fmt.Sprintf("%-12s", "Battery")) + style.Render(fmt.Sprintf("%.1f%%", pct))
}
