package profiles

import (
	"context"

	"jobportal-backend/internal/shared/apperr"
)

var ErrNotFound = apperr.NotFound("Profile not found")

type Repo interface {
	Get(ctx context.Context, userID string) (Profile, error)
	// Upsert stores the profile, keeping the original CreatedAt on update.
	Upsert(ctx context.Context, profile Profile) (Profile, error)
}
