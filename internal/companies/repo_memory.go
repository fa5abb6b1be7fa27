package companies

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Company
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Company)}
}

func (r *MemoryRepo) Create(ctx context.Context, company Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.OwnerUserID == company.OwnerUserID {
			return ErrAlreadyExists
		}
	}
	r.data[company.ID] = company
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.data[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	return company, nil
}

func (r *MemoryRepo) GetByOwner(ctx context.Context, ownerUserID string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, company := range r.data {
		if company.OwnerUserID == ownerUserID {
			return company, nil
		}
	}
	return Company{}, ErrNotFound
}

// List returns companies newest first, optionally filtered by status.
func (r *MemoryRepo) List(ctx context.Context, status Status) ([]Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Company, 0, len(r.data))
	for _, company := range r.data {
		if status == "" || company.Status == status {
			out = append(out, company)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, company Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[company.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = company.Name
	existing.Description = company.Description
	existing.Website = company.Website
	existing.Location = company.Location
	existing.UpdatedAt = company.UpdatedAt
	r.data[company.ID] = existing
	return nil
}

func (r *MemoryRepo) SetStatus(ctx context.Context, id string, status Status, reason string, at time.Time) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.data[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	company.Status = status
	company.RejectionReason = reason
	company.UpdatedAt = at
	r.data[id] = company
	return company, nil
}

var _ Repo = (*MemoryRepo)(nil)
