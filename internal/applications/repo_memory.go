package applications

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]Application
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Application)}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return ErrAlreadyApplied
		}
	}
	r.data[app.ID] = clone(app)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.data[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return clone(app), nil
}

func (r *MemoryRepo) Exists(ctx context.Context, jobID, applicantID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.data {
		if app.JobID == jobID && app.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	out := []Application{}
	for _, app := range r.data {
		if f.ApplicantID != "" && app.ApplicantID != f.ApplicantID {
			continue
		}
		if f.CompanyID != "" && app.CompanyID != f.CompanyID {
			continue
		}
		if f.JobID != "" && app.JobID != f.JobID {
			continue
		}
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		out = append(out, clone(app))
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	offset := max(f.Offset, 0)
	if offset >= len(out) {
		return []Application{}, nil
	}
	out = out[offset:]
	if limit := f.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) ApplyChange(ctx context.Context, id string, ch Change) (Application, Status, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.data[id]
	if !ok {
		return Application{}, "", ErrNotFound
	}
	prev := app.Status
	updated := ch.Apply(app)
	r.data[id] = clone(updated)
	return updated, prev, nil
}

func clone(app Application) Application {
	app.StatusHistory = append([]HistoryEntry{}, app.StatusHistory...)
	app.Job = nil
	return app
}
