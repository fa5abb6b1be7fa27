package profiles

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Profile)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, profile Profile) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.data[profile.UserID]; ok {
		profile.CreatedAt = existing.CreatedAt
	}
	r.data[profile.UserID] = clone(profile)
	return profile, nil
}

func clone(p Profile) Profile {
	p.Skills = append([]string{}, p.Skills...)
	return p
}
