package sdtm

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu      sync.RWMutex
	records []*Demographic
}

// NewMemoryRepo returns an in-memory Repository for tests and dry runs.
func NewMemoryRepo() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) Save(_ context.Context, records []*Demographic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append([]*Demographic(nil), records...)
	return nil
}

func (r *memoryRepo) List(_ context.Context) ([]*Demographic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Demographic(nil), r.records...), nil
}

func (r *memoryRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}
