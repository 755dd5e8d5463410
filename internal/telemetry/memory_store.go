package telemetry

import (
	"context"
	"sort"
	"sync"

	"github.com/hferreira23/batchwatch/internal/pagination"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	readings    map[string][]*SensorReading // keyed by batch ID
	inspections map[string][]*Inspection
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		readings:    make(map[string][]*SensorReading),
		inspections: make(map[string][]*Inspection),
	}
}

func (s *MemoryStore) CreateReading(ctx context.Context, r *SensorReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	if r.HumidityPct != nil {
		h := *r.HumidityPct
		cp.HumidityPct = &h
	}
	s.readings[r.BatchID] = append(s.readings[r.BatchID], &cp)
	return nil
}

func (s *MemoryStore) ListReadings(ctx context.Context, batchID string, cursor *pagination.Cursor, limit int) ([]*SensorReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedReadingsLocked(batchID)
	var out []*SensorReading
	for _, r := range all {
		if cursor != nil {
			if r.RecordedAt.After(cursor.Timestamp) {
				continue
			}
			if r.RecordedAt.Equal(cursor.Timestamp) && r.ID >= cursor.ID {
				continue
			}
		}
		cp := *r
		out = append(out, &cp)
		if len(out) == limit+1 {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) RecentReadings(ctx context.Context, batchID string, n int) ([]*SensorReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedReadingsLocked(batchID)
	if len(all) > n {
		all = all[:n]
	}
	out := make([]*SensorReading, 0, len(all))
	for _, r := range all {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) AllReadings(ctx context.Context, batchID string) ([]*SensorReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedReadingsLocked(batchID)
	out := make([]*SensorReading, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		cp := *all[i]
		out = append(out, &cp)
	}
	return out, nil
}

// sortedReadingsLocked returns the batch's readings newest first.
// Callers must hold s.mu.
func (s *MemoryStore) sortedReadingsLocked(batchID string) []*SensorReading {
	src := s.readings[batchID]
	all := make([]*SensorReading, len(src))
	copy(all, src)
	sort.Slice(all, func(i, j int) bool {
		if all[i].RecordedAt.Equal(all[j].RecordedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].RecordedAt.After(all[j].RecordedAt)
	})
	return all
}

func (s *MemoryStore) CountReadings(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rs := range s.readings {
		n += len(rs)
	}
	return n, nil
}

func (s *MemoryStore) CreateInspection(ctx context.Context, i *Inspection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *i
	if i.HumidityPct != nil {
		h := *i.HumidityPct
		cp.HumidityPct = &h
	}
	if i.PH != nil {
		p := *i.PH
		cp.PH = &p
	}
	s.inspections[i.BatchID] = append(s.inspections[i.BatchID], &cp)
	return nil
}

func (s *MemoryStore) ListInspections(ctx context.Context, batchID string) ([]*Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.inspections[batchID]
	out := make([]*Inspection, 0, len(src))
	for _, i := range src {
		cp := *i
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InspectedAt.Equal(out[j].InspectedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].InspectedAt.Before(out[j].InspectedAt)
	})
	return out, nil
}

func (s *MemoryStore) CountInspections(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, is := range s.inspections {
		n += len(is)
	}
	return n, nil
}
