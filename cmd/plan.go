package cmd

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/warebotics/warebot/core/model"
	"github.com/warebotics/warebot/core/planner"
	"github.com/warebotics/warebot/core/warehouse"
	"github.com/warebotics/warebot/infra/logger"
)

var planFrom, planTo []float64

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan one path through the generated warehouse",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Float64SliceVar(&planFrom, "from", nil, "start position as x,y (defaults to the robot start)")
	planCmd.Flags().Float64SliceVar(&planTo, "to", nil, "goal position as x,y")
	_ = planCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(cfg.Sim.Seed))
	w, err := warehouse.New(cfg.Warehouse, rng)
	if err != nil {
		return fmt.Errorf("warehouse: %w", err)
	}

	from := w.Start()
	if len(planFrom) == 2 {
		from = model.Point{X: planFrom[0], Y: planFrom[1]}
	} else if planFrom != nil {
		return fmt.Errorf("--from wants two values, got %d", len(planFrom))
	}
	if len(planTo) != 2 {
		return fmt.Errorf("--to wants two values, got %d", len(planTo))
	}
	to := model.Point{X: planTo[0], Y: planTo[1]}

	p := planner.New(w.Grid(), cfg.Planner, logger.New("plan"))
	path := p.Plan(from, to, nil)
	if path == nil {
		return fmt.Errorf("no path from (%.2f, %.2f) to (%.2f, %.2f)", from.X, from.Y, to.X, to.Y)
	}

	total := 0.0
	for i, wp := range path {
		if i > 0 {
			total += math.Hypot(wp.X-path[i-1].X, wp.Y-path[i-1].Y)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%2d  (%.2f, %.2f)\n", i, wp.X, wp.Y)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d waypoints, %.2f m\n", len(path), total)
	return nil
}
