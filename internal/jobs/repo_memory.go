package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Job)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// List returns matching jobs newest first.
func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Job, 0, len(r.data))
	for _, job := range r.data {
		if f.Status != "" && job.Status != f.Status {
			continue
		}
		if f.CompanyID != "" && job.CompanyID != f.CompanyID {
			continue
		}
		out = append(out, job)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *MemoryRepo) Update(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[job.ID]; !ok {
		return ErrNotFound
	}
	r.data[job.ID] = job
	return nil
}

func (r *MemoryRepo) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	closed := 0
	for id, job := range r.data {
		if job.Status == StatusActive && job.ApplicationDeadline != nil && job.ApplicationDeadline.Before(now) {
			job.Status = StatusClosed
			job.UpdatedAt = now
			r.data[id] = job
			closed++
		}
	}
	return closed, nil
}

func page(jobs []Job, limit, offset int) []Job {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(jobs) {
		return []Job{}
	}
	end := len(jobs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return jobs[offset:end]
}

var _ Repo = (*MemoryRepo)(nil)
