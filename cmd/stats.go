package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	corekpi "github.com/warebotics/warebot/core/metrics/kpi"
	"github.com/warebotics/warebot/core/tasklog"
	infrakpi "github.com/warebotics/warebot/infra/kpi"
	"github.com/warebotics/warebot/jobs/report"
	"github.com/warebotics/warebot/pkg/export"
)

var (
	statsFrom   string
	statsTo     string
	statsType   string
	statsDaily  bool
	statsKPIDB  string
	statsExport string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a recorded task log",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "only tasks at or after this RFC3339 time")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "only tasks at or before this RFC3339 time")
	statsCmd.Flags().StringVar(&statsType, "type", "", "only tasks of this type")
	statsCmd.Flags().BoolVar(&statsDaily, "daily", false, "append a per-day breakdown")
	statsCmd.Flags().StringVar(&statsKPIDB, "kpi-db", "", "also backfill daily KPIs into this sqlite file")
	statsCmd.Flags().StringVar(&statsExport, "export", "", "dump matching records as json or csv instead of the summary")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.TaskLog.Backend == "none" {
		return fmt.Errorf("tasklog backend is none, nothing to read")
	}

	q := tasklog.Query{Type: statsType}
	if statsFrom != "" {
		q.Start, err = time.Parse(time.RFC3339, statsFrom)
		if err != nil {
			return fmt.Errorf("parse --from: %w", err)
		}
	}
	if statsTo != "" {
		q.End, err = time.Parse(time.RFC3339, statsTo)
		if err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
	}

	ctx := cmd.Context()
	store, err := tasklog.Open(ctx, cfg.TaskLog)
	if err != nil {
		return fmt.Errorf("open tasklog: %w", err)
	}
	defer store.Close()

	recs, err := store.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("query tasklog: %w", err)
	}
	switch statsExport {
	case "":
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), recs)
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), recs)
	default:
		return fmt.Errorf("unknown export format %q", statsExport)
	}
	report.Summarize(recs).WriteText(cmd.OutOrStdout())

	if !statsDaily && statsKPIDB == "" {
		return nil
	}

	var kpiStore corekpi.Store = corekpi.NewMemoryStore()
	if statsKPIDB != "" {
		sq, err := infrakpi.NewSQLiteStore(statsKPIDB)
		if err != nil {
			return fmt.Errorf("open kpi db: %w", err)
		}
		defer sq.Close()
		kpiStore = sq
	}
	if err := report.Backfill(kpiStore, recs); err != nil {
		return fmt.Errorf("backfill kpi: %w", err)
	}
	if statsDaily {
		end := q.End
		if end.IsZero() {
			end = time.Now()
		}
		days, err := kpiStore.Query(statsType, q.Start, end)
		if err != nil {
			return fmt.Errorf("query kpi: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		report.WriteDaily(cmd.OutOrStdout(), days)
	}
	return nil
}
