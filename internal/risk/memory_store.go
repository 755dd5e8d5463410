package risk

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory assessment Store for development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	assessments map[string][]*Assessment // keyed by batch ID
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assessments: make(map[string][]*Assessment)}
}

func (s *MemoryStore) CreateAssessment(ctx context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	cp.Factors = make(map[string]float64, len(a.Factors))
	for k, v := range a.Factors {
		cp.Factors[k] = v
	}
	s.assessments[a.BatchID] = append(s.assessments[a.BatchID], &cp)
	return nil
}

func (s *MemoryStore) ListByBatch(ctx context.Context, batchID string) ([]*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.assessments[batchID]
	out := make([]*Assessment, 0, len(src))
	for _, a := range src {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EvaluatedAt.Equal(out[j].EvaluatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].EvaluatedAt.After(out[j].EvaluatedAt)
	})
	return out, nil
}
