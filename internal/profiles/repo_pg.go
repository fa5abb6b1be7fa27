package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"jobportal-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const profileColumns = `user_id, name, email, phone, resume, skills, experience, education, created_at, updated_at`

func (r *PGRepo) Get(ctx context.Context, userID string) (Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, db.Unavailable("failed to load profile", err)
	}
	return p, nil
}

func (r *PGRepo) Upsert(ctx context.Context, profile Profile) (Profile, error) {
	skills, err := json.Marshal(nonNil(profile.Skills))
	if err != nil {
		return Profile{}, err
	}
	const query = `
INSERT INTO profiles (` + profileColumns + `)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET
    name = EXCLUDED.name,
    email = EXCLUDED.email,
    phone = EXCLUDED.phone,
    resume = EXCLUDED.resume,
    skills = EXCLUDED.skills,
    experience = EXCLUDED.experience,
    education = EXCLUDED.education,
    updated_at = EXCLUDED.updated_at
RETURNING ` + profileColumns
	saved, err := scanProfile(r.DB.QueryRowContext(ctx, query,
		profile.UserID,
		profile.Name,
		profile.Email,
		nullString(profile.Phone),
		nullString(profile.Resume),
		string(skills),
		nullString(profile.Experience),
		nullString(profile.Education),
		profile.CreatedAt,
		profile.UpdatedAt,
	))
	if err != nil {
		return Profile{}, db.Unavailable("failed to save profile", err)
	}
	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var phone, resume, experience, education sql.NullString
	var skills []byte
	if err := row.Scan(
		&p.UserID,
		&p.Name,
		&p.Email,
		&phone,
		&resume,
		&skills,
		&experience,
		&education,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Profile{}, err
	}
	p.Phone = phone.String
	p.Resume = resume.String
	p.Experience = experience.String
	p.Education = education.String
	p.Skills = []string{}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &p.Skills); err != nil {
			return Profile{}, err
		}
	}
	return p, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
