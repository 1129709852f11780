package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/warebotics/warebot/core/metrics/kpi"
	"github.com/warebotics/warebot/core/tasklog"
)

// Summary condenses a span of task records for reporting.
type Summary struct {
	Total     int
	Completed int
	Canceled  int
	Failed    int
	ByType    map[string]int

	WaitMean    float64
	WaitMedian  float64
	WaitMax     float64
	ServiceMean float64
	PathMeters  float64

	First   time.Time
	Last    time.Time
	PerHour float64
}

// Summarize computes aggregate figures over the records.
func Summarize(recs []tasklog.Record) Summary {
	s := Summary{ByType: map[string]int{}}
	if len(recs) == 0 {
		return s
	}
	waits := make([]float64, 0, len(recs))
	services := make([]float64, 0, len(recs))
	s.First, s.Last = recs[0].Timestamp, recs[0].Timestamp
	for _, r := range recs {
		s.Total++
		s.ByType[r.Type]++
		switch r.Outcome {
		case tasklog.OutcomeCompleted:
			s.Completed++
		case tasklog.OutcomeCanceled:
			s.Canceled++
		case tasklog.OutcomeFailed:
			s.Failed++
		}
		waits = append(waits, r.WaitSeconds)
		services = append(services, r.ServiceSeconds)
		s.PathMeters += r.PathMeters
		if r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}
	}
	sort.Float64s(waits)
	s.WaitMean = stat.Mean(waits, nil)
	s.WaitMedian = stat.Quantile(0.5, stat.Empirical, waits, nil)
	s.WaitMax = waits[len(waits)-1]
	s.ServiceMean = stat.Mean(services, nil)
	if span := s.Last.Sub(s.First); span > 0 {
		s.PerHour = float64(s.Total) / span.Hours()
	}
	return s
}

// WriteText renders the summary as aligned text.
func (s Summary) WriteText(w io.Writer) {
	fmt.Fprintln(w, "Task log summary")
	if s.Total == 0 {
		fmt.Fprintln(w, "  no records")
		return
	}
	fmt.Fprintf(w, "  %-10s %d (completed %d, canceled %d, failed %d)\n",
		"Records", s.Total, s.Completed, s.Canceled, s.Failed)

	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%s %d", t, s.ByType[t])
	}
	fmt.Fprintf(w, "  %-10s %s\n", "By type", strings.Join(parts, ", "))

	fmt.Fprintf(w, "  %-10s mean %.1f s, median %.1f s, max %.1f s\n",
		"Wait", s.WaitMean, s.WaitMedian, s.WaitMax)
	fmt.Fprintf(w, "  %-10s mean %.1f s\n", "Service", s.ServiceMean)
	fmt.Fprintf(w, "  %-10s total %.1f m\n", "Path", s.PathMeters)
	fmt.Fprintf(w, "  %-10s %s .. %s\n", "Window",
		s.First.UTC().Format(time.RFC3339), s.Last.UTC().Format(time.RFC3339))
	if s.PerHour > 0 {
		fmt.Fprintf(w, "  %-10s %.2f tasks/h\n", "Rate", s.PerHour)
	}
}

// WriteDaily renders per-day KPI rows as aligned text.
func WriteDaily(w io.Writer, recs []kpi.Record) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintln(w, "Daily breakdown")
	for _, r := range recs {
		fmt.Fprintf(w, "  %s %-8s done %-4d canceled %-4d failed %-4d avg wait %.1f s\n",
			r.Date.Format("2006-01-02"), r.Type,
			r.Completed, r.Canceled, r.Failed, r.AvgWaitSeconds())
	}
}
