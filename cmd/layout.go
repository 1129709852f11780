package cmd

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warebotics/warebot/core/planner"
	"github.com/warebotics/warebot/core/warehouse"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the generated warehouse occupancy grid",
	RunE:  runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(cfg.Sim.Seed))
	w, err := warehouse.New(cfg.Warehouse, rng)
	if err != nil {
		return fmt.Errorf("warehouse: %w", err)
	}
	grid := w.Grid()

	marks := map[planner.Cell]byte{}
	for _, c := range w.Chargers() {
		marks[grid.CellOf(c)] = 'C'
	}
	for _, it := range w.Items() {
		marks[grid.CellOf(it.Position)] = '*'
	}
	marks[grid.CellOf(w.Start())] = 'R'

	var b strings.Builder
	// Row 0 is the bottom of the warehouse, so print top down.
	for cy := grid.Height() - 1; cy >= 0; cy-- {
		for cx := 0; cx < grid.Width(); cx++ {
			cell := planner.Cell{CX: cx, CY: cy}
			switch {
			case marks[cell] != 0:
				b.WriteByte(marks[cell])
			case grid.Occupied(cell):
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	fmt.Fprintf(cmd.OutOrStdout(), "%dx%d cells at %.2f m, %d free\n",
		grid.Width(), grid.Height(), grid.Resolution(), grid.FreeCells())
	return nil
}
