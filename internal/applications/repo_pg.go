package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobportal-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const applicationColumns = `id, job_id, applicant_id, company_id, name, email, resume, cv, cover_letter, status, notes, notification_read, status_history, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	history, err := json.Marshal(nonNilHistory(app.StatusHistory))
	if err != nil {
		return err
	}
	const query = `
INSERT INTO applications (` + applicationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb, $14, $15)`
	_, err = r.DB.ExecContext(ctx, query,
		app.ID,
		app.JobID,
		app.ApplicantID,
		app.CompanyID,
		app.Name,
		app.Email,
		nullString(app.Resume),
		nullString(app.CV),
		nullString(app.CoverLetter),
		string(app.Status),
		app.Notes,
		app.NotificationRead,
		string(history),
		app.CreatedAt,
		app.UpdatedAt,
	)
	if db.IsUniqueViolation(err, "applications_job_applicant_key") {
		return ErrAlreadyApplied
	}
	if db.IsCheckViolation(err, "applications_document_present") {
		return ErrDocumentRequired
	}
	return db.Unavailable("failed to create application", err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	app, err := scanApplication(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, db.Unavailable("failed to load application", err)
	}
	return app, nil
}

func (r *PGRepo) Exists(ctx context.Context, jobID, applicantID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND applicant_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, jobID, applicantID).Scan(&exists); err != nil {
		return false, db.Unavailable("failed to check existing application", err)
	}
	return exists, nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Application, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ApplicantID != "" {
		add("applicant_id = $%d", f.ApplicantID)
	}
	if f.CompanyID != "" {
		add("company_id = $%d", f.CompanyID)
	}
	if f.JobID != "" {
		add("job_id = $%d", f.JobID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.limit(), max(f.Offset, 0))
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Unavailable("failed to list applications", err)
	}
	defer rows.Close()

	out := []Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, db.Unavailable("failed to list applications", err)
		}
		out = append(out, app)
	}
	return out, db.Unavailable("failed to list applications", rows.Err())
}

// applyChangeQuery patches the row and appends the history entry in one
// statement. The locked subquery supplies the previous status, so two
// concurrent identical status changes produce a single entry.
const applyChangeQuery = `
UPDATE applications AS a
SET status = COALESCE($2::text, cur.status),
    notes = COALESCE($3::text, cur.notes),
    notification_read = COALESCE($4::boolean, cur.notification_read),
    status_history = CASE
        WHEN $2::text IS NOT NULL AND $2::text <> cur.status
        THEN cur.status_history || jsonb_build_array(jsonb_build_object(
            'status', $2::text,
            'timestamp', $5::text,
            'notes', COALESCE($3::text, '')))
        ELSE cur.status_history
    END,
    updated_at = $6
FROM (
    SELECT id, status, notes, notification_read, status_history
    FROM applications
    WHERE id = $1
    FOR UPDATE
) AS cur
WHERE a.id = cur.id
RETURNING a.id, a.job_id, a.applicant_id, a.company_id, a.name, a.email, a.resume, a.cv, a.cover_letter,
    a.status, a.notes, a.notification_read, a.status_history, a.created_at, a.updated_at, cur.status`

func (r *PGRepo) ApplyChange(ctx context.Context, id string, ch Change) (Application, Status, error) {
	var status, notes sql.NullString
	var read sql.NullBool
	if ch.Status != nil {
		status = sql.NullString{String: string(*ch.Status), Valid: true}
	}
	if ch.Notes != nil {
		notes = sql.NullString{String: *ch.Notes, Valid: true}
	}
	if ch.NotificationRead != nil {
		read = sql.NullBool{Bool: *ch.NotificationRead, Valid: true}
	}

	var prev string
	app, err := scanApplication(r.DB.QueryRowContext(ctx, applyChangeQuery,
		id, status, notes, read, ch.At.UTC().Format(time.RFC3339Nano), ch.At,
	), &prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, "", ErrNotFound
		}
		return Application{}, "", db.Unavailable("failed to update application", err)
	}
	return app, Status(prev), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner, extra ...any) (Application, error) {
	var app Application
	var resume, cv, coverLetter sql.NullString
	var status string
	var history []byte
	dest := []any{
		&app.ID,
		&app.JobID,
		&app.ApplicantID,
		&app.CompanyID,
		&app.Name,
		&app.Email,
		&resume,
		&cv,
		&coverLetter,
		&status,
		&app.Notes,
		&app.NotificationRead,
		&history,
		&app.CreatedAt,
		&app.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Application{}, err
	}
	app.Resume = resume.String
	app.CV = cv.String
	app.CoverLetter = coverLetter.String
	app.Status = Status(status)
	app.StatusHistory = []HistoryEntry{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
			return Application{}, fmt.Errorf("decode status history: %w", err)
		}
	}
	return app, nil
}

func nonNilHistory(h []HistoryEntry) []HistoryEntry {
	if h == nil {
		return []HistoryEntry{}
	}
	return h
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
