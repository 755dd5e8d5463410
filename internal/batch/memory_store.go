package batch

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]*Batch
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[string]*Batch)}
}

func (s *MemoryStore) Create(ctx context.Context, b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *b
	s.batches[b.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Batch, 0, len(s.batches))
	for _, b := range s.batches {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[b.ID]; !ok {
		return ErrBatchNotFound
	}
	cp := *b
	s.batches[b.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[id]; !ok {
		return ErrBatchNotFound
	}
	delete(s.batches, id)
	return nil
}

func (s *MemoryStore) UpdateRisk(ctx context.Context, id, level string, score float64, explanation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return ErrBatchNotFound
	}
	b.RiskLevel = level
	b.RiskScore = score
	b.RiskExplanation = explanation
	return nil
}

func (s *MemoryStore) CountByRiskLevel(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, b := range s.batches {
		counts[b.RiskLevel]++
	}
	return counts, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batches), nil
}
