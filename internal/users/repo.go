package users

import (
	"context"

	"jobportal-backend/internal/shared/apperr"
)

var (
	ErrNotFound   = apperr.NotFound("User not found")
	ErrEmailTaken = apperr.Conflict("An account with this email already exists")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	// UpdateProfile refreshes name and picture from an identity provider.
	UpdateProfile(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (User, error)
}
