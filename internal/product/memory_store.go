package product

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory product store for demo/development mode.
type MemoryStore struct {
	products map[string]*Product
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory product store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*Product),
	}
}

func (m *MemoryStore) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryStore) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products), nil
}

var _ Store = (*MemoryStore)(nil)
