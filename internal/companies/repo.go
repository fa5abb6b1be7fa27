package companies

import (
	"context"
	"time"

	"jobportal-backend/internal/shared/apperr"
)

var (
	ErrNotFound      = apperr.NotFound("Company not found")
	ErrAlreadyExists = apperr.Conflict("A company profile already exists for this account")
)

type Repo interface {
	Create(ctx context.Context, company Company) error
	GetByID(ctx context.Context, id string) (Company, error)
	GetByOwner(ctx context.Context, ownerUserID string) (Company, error)
	List(ctx context.Context, status Status) ([]Company, error)
	// UpdateProfile saves the owner-editable fields.
	UpdateProfile(ctx context.Context, company Company) error
	// SetStatus records a review decision and returns the updated company.
	SetStatus(ctx context.Context, id string, status Status, reason string, at time.Time) (Company, error)
}
