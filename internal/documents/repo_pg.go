package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobportal-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, extracted_text_key, extracted_at, created_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, NULL, $8)`
	provider := doc.StorageProvider
	if provider == "" {
		provider = "local"
	}
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		provider,
		doc.StorageKey,
		doc.CreatedAt,
	)
	return db.Unavailable("failed to record document", err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, db.Unavailable("failed to load document", err)
	}
	return doc, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	limit, offset = clampPage(limit, offset)
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, db.Unavailable("failed to list documents", err)
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, db.Unavailable("failed to list documents", err)
		}
		out = append(out, doc)
	}
	return out, db.Unavailable("failed to list documents", rows.Err())
}

func (r *PGRepo) MarkExtracted(ctx context.Context, id, textKey string, at time.Time) error {
	const query = `
UPDATE documents
SET extracted_text_key = $1, extracted_at = $2
WHERE id = $3 AND extracted_text_key IS NULL`
	_, err := r.DB.ExecContext(ctx, query, textKey, at, id)
	return db.Unavailable("failed to record extraction", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var extractedKey sql.NullString
	var extractedAt sql.NullTime
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageProvider,
		&doc.StorageKey,
		&extractedKey,
		&extractedAt,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.ExtractedTextKey = extractedKey.String
	if extractedAt.Valid {
		doc.ExtractedAt = &extractedAt.Time
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
