package kpi

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add merges the record into the day and type bucket.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.Type] == nil {
		s.data[r.Type] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.Type][d]
	if rec == nil {
		rec = &Record{Type: r.Type, Date: d}
		s.data[r.Type][d] = rec
	}
	rec.Completed += r.Completed
	rec.Canceled += r.Canceled
	rec.Failed += r.Failed
	rec.WaitSeconds += r.WaitSeconds
	rec.ServiceSeconds += r.ServiceSeconds
	rec.PathMeters += r.PathMeters
	return nil
}

// Query returns records between start and end inclusive, sorted by date then
// type.
func (s *MemoryStore) Query(taskType string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	for typ, m := range s.data {
		if taskType != "" && typ != taskType {
			continue
		}
		for d, r := range m {
			if d.Before(start) || d.After(end) {
				continue
			}
			res = append(res, *r)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.Before(res[j].Date)
		}
		return res[i].Type < res[j].Type
	})
	return res, nil
}
