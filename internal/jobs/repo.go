package jobs

import (
	"context"
	"time"

	"jobportal-backend/internal/shared/apperr"
)

// ErrNotFound is returned when a job does not exist.
var ErrNotFound = apperr.NotFound("Job not found")

// Repo defines persistence operations for jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, id string) (Job, error)
	List(ctx context.Context, f Filter) ([]Job, error)
	Update(ctx context.Context, job Job) error
	// CloseExpired closes active jobs whose deadline is before now and reports how many changed.
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}
