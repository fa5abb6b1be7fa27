package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo keeps accounts in process, indexed by id and lowercased email.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := emailKey(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[key]; taken {
		return ErrEmailTaken
	}
	r.byID[user.ID] = user
	r.byEmail[key] = user.ID
	return nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[user.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name, stored.PictureURL = user.Name, user.PictureURL
	stored.UpdatedAt = r.now().UTC()
	r.byID[user.ID] = stored
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.byID[userID]; ok {
		return user, nil
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.byID[id], nil
}

var _ Repo = (*MemoryRepo)(nil)
