package adam

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu      sync.RWMutex
	records []*SubjectLevel
}

// NewMemoryRepo returns an in-memory Repository for tests and dry runs.
func NewMemoryRepo() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) Save(_ context.Context, records []*SubjectLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append([]*SubjectLevel(nil), records...)
	return nil
}

func (r *memoryRepo) List(_ context.Context) ([]*SubjectLevel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*SubjectLevel(nil), r.records...), nil
}

func (r *memoryRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}
