package applications

import (
	"context"

	"jobportal-backend/internal/shared/apperr"
)

var ErrNotFound = apperr.NotFound("Application not found")

type Repo interface {
	// Create inserts app. A second application for the same job and
	// applicant returns ErrAlreadyApplied.
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	Exists(ctx context.Context, jobID, applicantID string) (bool, error)
	// List returns matching applications, newest first.
	List(ctx context.Context, f Filter) ([]Application, error)
	// ApplyChange applies ch atomically and returns the updated application
	// with the status it had before.
	ApplyChange(ctx context.Context, id string, ch Change) (Application, Status, error)
}
