package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/warebotics/warebot/core/metrics/kpi"
	"github.com/warebotics/warebot/core/tasklog"
)

func historyFixture() []tasklog.Record {
	t0 := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	return []tasklog.Record{
		{Timestamp: t0, Type: "pick", Outcome: tasklog.OutcomeCompleted, WaitSeconds: 2, ServiceSeconds: 5, PathMeters: 10},
		{Timestamp: t0.Add(time.Hour), Type: "place", Outcome: tasklog.OutcomeCompleted, WaitSeconds: 4, ServiceSeconds: 7, PathMeters: 12},
		{Timestamp: t0.Add(2 * time.Hour), Type: "pick", Outcome: tasklog.OutcomeCanceled, WaitSeconds: 6, ServiceSeconds: 0, PathMeters: 0},
	}
}

func TestBackfillAggregatesByDayAndType(t *testing.T) {
	store := kpi.NewMemoryStore()
	if err := Backfill(store, historyFixture()); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	day := kpi.Day(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	recs, err := store.Query("pick", day, day)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	r := recs[0]
	if r.Completed != 1 || r.Canceled != 1 || r.WaitSeconds != 8 || r.PathMeters != 10 {
		t.Fatalf("pick record = %+v", r)
	}
	all, err := store.Query("", day, day)
	if err != nil || len(all) != 2 {
		t.Fatalf("all: %v len=%d", err, len(all))
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(historyFixture())
	if s.Total != 3 || s.Completed != 2 || s.Canceled != 1 || s.Failed != 0 {
		t.Fatalf("counts = %+v", s)
	}
	if s.ByType["pick"] != 2 || s.ByType["place"] != 1 {
		t.Fatalf("by type = %+v", s.ByType)
	}
	if s.WaitMean != 4 || s.WaitMedian != 4 || s.WaitMax != 6 {
		t.Fatalf("wait = %v/%v/%v", s.WaitMean, s.WaitMedian, s.WaitMax)
	}
	if s.PathMeters != 22 {
		t.Fatalf("path = %v", s.PathMeters)
	}
	// Three tasks over two hours.
	if math.Abs(s.PerHour-1.5) > 1e-9 {
		t.Fatalf("per hour = %v", s.PerHour)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.PerHour != 0 {
		t.Fatalf("summary = %+v", s)
	}
	var buf bytes.Buffer
	s.WriteText(&buf)
	if !strings.Contains(buf.String(), "no records") {
		t.Fatalf("empty render:\n%s", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	Summarize(historyFixture()).WriteText(&buf)
	out := buf.String()
	for _, want := range []string{
		"Task log summary",
		"completed 2, canceled 1, failed 0",
		"pick 2, place 1",
		"mean 4.0 s",
		"total 22.0 m",
		"1.50 tasks/h",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDaily(t *testing.T) {
	store := kpi.NewMemoryStore()
	if err := Backfill(store, historyFixture()); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	day := kpi.Day(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	recs, err := store.Query("", day, day)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var buf bytes.Buffer
	WriteDaily(&buf, recs)
	out := buf.String()
	if !strings.Contains(out, "2026-03-05") || !strings.Contains(out, "pick") {
		t.Fatalf("daily rows:\n%s", out)
	}
}
