package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/validate"
)

// CompanyGate resolves the approved company behind a company user.
type CompanyGate interface {
	ApprovedCompanyName(ctx context.Context, ownerUserID string) (string, error)
}

// Service contains business logic for job postings.
type Service struct {
	Repo      Repo
	Companies CompanyGate
	Now       func() time.Time
}

func NewService(repo Repo, companies CompanyGate) *Service {
	return &Service{Repo: repo, Companies: companies, Now: time.Now}
}

// CreateInput is the body of POST /jobs.
type CreateInput struct {
	Title               string     `json:"title" validate:"required,max=200"`
	Description         string     `json:"description" validate:"max=20000"`
	Location            string     `json:"location" validate:"max=200"`
	Type                string     `json:"type" validate:"max=50"`
	Status              string     `json:"status" validate:"omitempty,oneof=active closed draft"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
}

// UpdateInput is the body of PATCH /jobs/:id. Nil fields are left unchanged.
type UpdateInput struct {
	Title               *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description         *string    `json:"description" validate:"omitempty,max=20000"`
	Location            *string    `json:"location" validate:"omitempty,max=200"`
	Type                *string    `json:"type" validate:"omitempty,max=50"`
	Status              *string    `json:"status" validate:"omitempty,oneof=active closed draft"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
}

func (s *Service) Get(ctx context.Context, id string) (Job, error) {
	if strings.TrimSpace(id) == "" {
		return Job{}, apperr.Validation("Job ID is required")
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns active jobs to everyone. A company sees all of its own postings
// when it filters by its own id; admins see everything.
func (s *Service) List(ctx context.Context, actor *access.Actor, f Filter) ([]Job, error) {
	owner := actor != nil && f.CompanyID != "" && actor.ID == f.CompanyID
	if !owner && !actor.IsAdmin() {
		f.Status = StatusActive
	}
	return s.Repo.List(ctx, f)
}

func (s *Service) Create(ctx context.Context, actor *access.Actor, in CreateInput) (Job, error) {
	if err := access.Check(actor, access.ActionCreate, access.Job("", actorID(actor))); err != nil {
		return Job{}, err
	}
	if err := validate.Struct(in); err != nil {
		return Job{}, err
	}
	companyName, err := s.Companies.ApprovedCompanyName(ctx, actor.ID)
	if err != nil {
		return Job{}, err
	}

	status := StatusActive
	if in.Status != "" {
		if status, err = ParseStatus(in.Status); err != nil {
			return Job{}, err
		}
	}
	now := s.Now().UTC()
	job := Job{
		ID:                  uuid.NewString(),
		CompanyID:           actor.ID,
		CompanyName:         companyName,
		Title:               strings.TrimSpace(in.Title),
		Description:         in.Description,
		Location:            strings.TrimSpace(in.Location),
		Type:                strings.TrimSpace(in.Type),
		Status:              status,
		ApplicationDeadline: in.ApplicationDeadline,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (s *Service) Update(ctx context.Context, actor *access.Actor, id string, in UpdateInput) (Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if err := access.Check(actor, access.ActionUpdate, access.Job(job.ID, job.CompanyID)); err != nil {
		return Job{}, err
	}
	if err := validate.Struct(in); err != nil {
		return Job{}, err
	}

	if in.Title != nil {
		job.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.Location != nil {
		job.Location = strings.TrimSpace(*in.Location)
	}
	if in.Type != nil {
		job.Type = strings.TrimSpace(*in.Type)
	}
	if in.Status != nil {
		if job.Status, err = ParseStatus(*in.Status); err != nil {
			return Job{}, err
		}
	}
	if in.ApplicationDeadline != nil {
		job.ApplicationDeadline = in.ApplicationDeadline
	}
	job.UpdatedAt = s.Now().UTC()

	if err := s.Repo.Update(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// CloseExpired closes every active job whose deadline has passed.
func (s *Service) CloseExpired(ctx context.Context) (int, error) {
	return s.Repo.CloseExpired(ctx, s.Now().UTC())
}

func actorID(a *access.Actor) string {
	if a == nil {
		return ""
	}
	return a.ID
}
