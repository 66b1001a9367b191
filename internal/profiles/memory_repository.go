package profiles

import (
	"context"
	"sync"

	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

// MemoryRepository keeps collections in memory. It backs dry runs and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[schema.Role][]schema.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[schema.Role][]schema.Profile)}
}

func (r *MemoryRepository) List(_ context.Context, role schema.Role) ([]schema.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schema.Profile, len(r.data[role]))
	copy(out, r.data[role])
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, role schema.Role, id string) (schema.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := indexOf(r.data[role], id)
	if i < 0 {
		return schema.Profile{}, ErrProfileNotFound
	}
	return r.data[role][i], nil
}

func (r *MemoryRepository) Add(_ context.Context, role schema.Role, p schema.Profile) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if emailTaken(r.data[role], p.Email) {
		return 0, ErrDuplicateEmail
	}
	r.data[role] = append(r.data[role], p)
	return len(r.data[role]), nil
}

func (r *MemoryRepository) Update(_ context.Context, role schema.Role, p schema.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.data[role], p.ID)
	if i < 0 {
		return ErrProfileNotFound
	}
	r.data[role][i] = p
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, role schema.Role, id string) (schema.Profile, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.data[role]
	i := indexOf(list, id)
	if i < 0 {
		return schema.Profile{}, 0, ErrProfileNotFound
	}
	removed := list[i]
	r.data[role] = append(list[:i:i], list[i+1:]...)
	return removed, len(r.data[role]), nil
}
