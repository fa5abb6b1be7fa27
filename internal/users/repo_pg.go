package users

import (
	"context"
	"database/sql"
	"errors"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, role, company_name, password_hash, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		nullableString(user.Name),
		string(user.Role),
		nullableString(user.CompanyName),
		nullableString(user.PasswordHash),
		nullableString(user.PictureURL),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if db.IsUniqueViolation(err, "users_email_lower_idx") {
		return ErrEmailTaken
	}
	return db.Unavailable("failed to create user", err)
}

func (r *PGRepo) UpdateProfile(ctx context.Context, user User) error {
	const query = `
UPDATE users
SET name = COALESCE($2, name), picture_url = COALESCE($3, picture_url), updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, user.ID, nullableString(user.Name), nullableString(user.PictureURL))
	if err != nil {
		return db.Unavailable("failed to update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const userColumns = `id, email, name, role, company_name, password_hash, picture_url, created_at, updated_at`

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.getOne(ctx, query, userID)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	return r.getOne(ctx, query, email)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (User, error) {
	var user User
	var name, companyName, passwordHash, pictureURL sql.NullString
	var role string
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&name,
		&role,
		&companyName,
		&passwordHash,
		&pictureURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, db.Unavailable("failed to load user", err)
	}
	user.Name = name.String
	user.Role = access.Role(role)
	user.CompanyName = companyName.String
	user.PasswordHash = passwordHash.String
	user.PictureURL = pictureURL.String
	return user, nil
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
