package alerts

import (
	"context"
	"sort"
	"sync"

	"github.com/hferreira23/batchwatch/internal/pagination"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	alerts []*Alert
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(ctx context.Context, a *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.alerts = append(s.alerts, &cp)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedLocked()
	var out []*Alert
	for _, a := range all {
		if cursor != nil {
			if a.CreatedAt.After(cursor.Timestamp) {
				continue
			}
			if a.CreatedAt.Equal(cursor.Timestamp) && a.ID >= cursor.ID {
				continue
			}
		}
		cp := *a
		out = append(out, &cp)
		if len(out) == limit+1 {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByBatch(ctx context.Context, batchID string) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Alert
	for _, a := range s.sortedLocked() {
		if a.BatchID != batchID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// sortedLocked returns alerts newest first. Callers must hold s.mu.
func (s *MemoryStore) sortedLocked() []*Alert {
	all := make([]*Alert, len(s.alerts))
	copy(all, s.alerts)
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts), nil
}
