package companies

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

const companyColumns = `id, owner_user_id, name, description, website, location, status, rejection_reason, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, company Company) error {
	const query = `
INSERT INTO companies (` + companyColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		company.ID,
		company.OwnerUserID,
		company.Name,
		nullString(company.Description),
		nullString(company.Website),
		nullString(company.Location),
		string(company.Status),
		nullString(company.RejectionReason),
		company.CreatedAt,
		company.UpdatedAt,
	)
	if db.IsUniqueViolation(err, "companies_owner_idx") {
		return ErrAlreadyExists
	}
	return db.Unavailable("failed to create company", err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

func (r *PGRepo) GetByOwner(ctx context.Context, ownerUserID string) (Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE owner_user_id = $1`, ownerUserID)
}

func (r *PGRepo) getOne(ctx context.Context, query, arg string) (Company, error) {
	company, err := scanCompany(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, db.Unavailable("failed to load company", err)
	}
	return company, nil
}

func (r *PGRepo) List(ctx context.Context, status Status) ([]Company, error) {
	const query = `
SELECT ` + companyColumns + `
FROM companies
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, db.Unavailable("failed to list companies", err)
	}
	defer rows.Close()

	out := []Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, db.Unavailable("failed to list companies", err)
		}
		out = append(out, company)
	}
	return out, db.Unavailable("failed to list companies", rows.Err())
}

func (r *PGRepo) UpdateProfile(ctx context.Context, company Company) error {
	const query = `
UPDATE companies
SET name = $2, description = $3, website = $4, location = $5, updated_at = $6
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		company.ID,
		company.Name,
		nullString(company.Description),
		nullString(company.Website),
		nullString(company.Location),
		company.UpdatedAt,
	)
	if err != nil {
		return db.Unavailable("failed to update company", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SetStatus(ctx context.Context, id string, status Status, reason string, at time.Time) (Company, error) {
	const query = `
UPDATE companies
SET status = $2, rejection_reason = $3, updated_at = $4
WHERE id = $1
RETURNING ` + companyColumns
	company, err := scanCompany(r.DB.QueryRowContext(ctx, query, id, string(status), nullString(reason), at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, db.Unavailable("failed to update company status", err)
	}
	return company, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (Company, error) {
	var company Company
	var description, website, location, reason sql.NullString
	var status string
	if err := row.Scan(
		&company.ID,
		&company.OwnerUserID,
		&company.Name,
		&description,
		&website,
		&location,
		&status,
		&reason,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return Company{}, err
	}
	company.Description = description.String
	company.Website = website.String
	company.Location = location.String
	company.Status = Status(status)
	company.RejectionReason = reason.String
	return company, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
