package jobs

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"jobportal-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, company_id, company_name, title, description, location, type, status, application_deadline, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (` + jobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.CompanyID,
		job.CompanyName,
		job.Title,
		nullString(job.Description),
		nullString(job.Location),
		nullString(job.Type),
		string(job.Status),
		nullTime(job.ApplicationDeadline),
		job.CreatedAt,
		job.UpdatedAt,
	)
	return db.Unavailable("failed to create job", err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, db.Unavailable("failed to load job", err)
	}
	return job, nil
}

// List returns matching jobs newest first.
func (r *PGRepo) List(ctx context.Context, f Filter) ([]Job, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var where []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		where = append(where, "company_id = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Unavailable("failed to list jobs", err)
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, db.Unavailable("failed to list jobs", err)
		}
		out = append(out, job)
	}
	return out, db.Unavailable("failed to list jobs", rows.Err())
}

func (r *PGRepo) Update(ctx context.Context, job Job) error {
	const query = `
UPDATE jobs
SET title = $2, description = $3, location = $4, type = $5, status = $6, application_deadline = $7, updated_at = $8
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		nullString(job.Description),
		nullString(job.Location),
		nullString(job.Type),
		string(job.Status),
		nullTime(job.ApplicationDeadline),
		job.UpdatedAt,
	)
	if err != nil {
		return db.Unavailable("failed to update job", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	const query = `
UPDATE jobs
SET status = 'closed', updated_at = $1
WHERE status = 'active' AND application_deadline IS NOT NULL AND application_deadline < $1`
	res, err := r.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, db.Unavailable("failed to close expired jobs", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var description, location, jobType sql.NullString
	var status string
	var deadline sql.NullTime
	if err := row.Scan(
		&job.ID,
		&job.CompanyID,
		&job.CompanyName,
		&job.Title,
		&description,
		&location,
		&jobType,
		&status,
		&deadline,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return Job{}, err
	}
	job.Description = description.String
	job.Location = location.String
	job.Type = jobType.String
	job.Status = Status(status)
	if deadline.Valid {
		t := deadline.Time
		job.ApplicationDeadline = &t
	}
	return job, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
