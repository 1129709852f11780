package kpi

import (
	"path/filepath"
	"testing"
	"time"

	core "github.com/warebotics/warebot/core/metrics/kpi"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	d := core.Day(time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC))
	if err := s.Add(core.Record{Type: "pick", Date: d, Completed: 1, WaitSeconds: 3, PathMeters: 12.5}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(core.Record{Type: "pick", Date: d.Add(3 * time.Hour), Canceled: 1, WaitSeconds: 5}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(core.Record{Type: "charge", Date: d, Completed: 1}); err != nil {
		t.Fatalf("add3: %v", err)
	}

	recs, err := s.Query("pick", d, d)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1 merged row", len(recs))
	}
	r := recs[0]
	if r.Completed != 1 || r.Canceled != 1 || r.WaitSeconds != 8 || r.PathMeters != 12.5 {
		t.Fatalf("merged record = %+v", r)
	}
	if !r.Date.Equal(d) {
		t.Fatalf("date = %v, want %v", r.Date, d)
	}

	all, err := s.Query("", d, d)
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all types len = %d, want 2", len(all))
	}
}

func TestSQLiteStoreEmptyRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	recs, err := s.Query("", time.Unix(0, 0), time.Unix(86400, 0))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("len = %d, want 0", len(recs))
	}
}
