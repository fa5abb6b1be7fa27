package documents

import (
	"context"
	"time"

	"jobportal-backend/internal/shared/apperr"
)

var ErrNotFound = apperr.NotFound("Document not found")

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	// MarkExtracted records the extracted text location once; later calls are no-ops.
	MarkExtracted(ctx context.Context, id, textKey string, at time.Time) error
}
