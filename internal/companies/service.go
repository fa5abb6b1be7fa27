package companies

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/metrics"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/shared/validate"
	"jobportal-backend/internal/users"
)

// OwnerDirectory looks up the user who owns a company.
type OwnerDirectory interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

type Service struct {
	Repo       Repo
	Owners     OwnerDirectory
	Notifier   notify.Notifier
	AppBaseURL string
	Now        func() time.Time
}

func NewService(repo Repo, owners OwnerDirectory, notifier notify.Notifier, appBaseURL string) *Service {
	return &Service{Repo: repo, Owners: owners, Notifier: notifier, AppBaseURL: appBaseURL, Now: time.Now}
}

type CreateInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Website     string `json:"website" validate:"omitempty,url,max=500"`
	Location    string `json:"location" validate:"max=200"`
}

type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Website     *string `json:"website" validate:"omitempty,url,max=500"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
}

type StatusInput struct {
	Status          string `json:"status" validate:"required,oneof=pending approved rejected"`
	RejectionReason string `json:"rejectionReason" validate:"max=2000"`
}

// Create registers the actor's company profile for review.
func (s *Service) Create(ctx context.Context, actor *access.Actor, in CreateInput) (Company, error) {
	if err := access.Check(actor, access.ActionCreate, access.Company("", "")); err != nil {
		return Company{}, err
	}
	if err := validate.Struct(in); err != nil {
		return Company{}, err
	}
	now := s.Now().UTC()
	company := Company{
		ID:          uuid.NewString(),
		OwnerUserID: actor.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Website:     strings.TrimSpace(in.Website),
		Location:    strings.TrimSpace(in.Location),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (s *Service) Get(ctx context.Context, actor *access.Actor, id string) (Company, error) {
	company, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if err := access.Check(actor, access.ActionView, access.Company(company.ID, company.OwnerUserID)); err != nil {
		return Company{}, err
	}
	return company, nil
}

// List is the admin review queue.
func (s *Service) List(ctx context.Context, actor *access.Actor, status string) ([]Company, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("Only admins can list companies")
	}
	var filter Status
	if status != "" {
		var err error
		if filter, err = ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.Repo.List(ctx, filter)
}

// Update edits the owner-facing profile fields.
func (s *Service) Update(ctx context.Context, actor *access.Actor, id string, in UpdateInput) (Company, error) {
	company, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if err := access.Check(actor, access.ActionUpdate, access.Company(company.ID, company.OwnerUserID)); err != nil {
		return Company{}, err
	}
	if err := validate.Struct(in); err != nil {
		return Company{}, err
	}
	if in.Name != nil {
		company.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		company.Description = *in.Description
	}
	if in.Website != nil {
		company.Website = strings.TrimSpace(*in.Website)
	}
	if in.Location != nil {
		company.Location = strings.TrimSpace(*in.Location)
	}
	company.UpdatedAt = s.Now().UTC()
	if err := s.Repo.UpdateProfile(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

// UpdateStatus records an admin review decision and emails the owner. A
// failed owner lookup or delivery never fails the update.
func (s *Service) UpdateStatus(ctx context.Context, actor *access.Actor, id string, in StatusInput) (Company, error) {
	if err := access.Check(actor, access.ActionUpdateStatus, access.Company(id, "")); err != nil {
		return Company{}, err
	}
	if err := validate.Struct(in); err != nil {
		return Company{}, err
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return Company{}, err
	}
	reason := ""
	if status == StatusRejected {
		reason = strings.TrimSpace(in.RejectionReason)
	}

	company, err := s.Repo.SetStatus(ctx, id, status, reason, s.Now().UTC())
	if err != nil {
		return Company{}, err
	}
	metrics.IncCompanyReviews(string(company.Status))
	s.notifyOwner(ctx, company)
	return company, nil
}

func (s *Service) notifyOwner(ctx context.Context, company Company) {
	if s.Notifier == nil || s.Owners == nil {
		return
	}
	owner, err := s.Owners.GetByID(ctx, company.OwnerUserID)
	if err != nil {
		telemetry.Warn("company.owner_lookup_failed", map[string]any{
			"company_id": company.ID,
			"error":      err,
		})
		return
	}
	if msg, ok := reviewEmail(company, owner.Email, s.AppBaseURL); ok {
		s.Notifier.Dispatch(ctx, msg)
	}
}

// ApprovedCompanyName returns the name of the approved company owned by
// ownerUserID, or Forbidden.
func (s *Service) ApprovedCompanyName(ctx context.Context, ownerUserID string) (string, error) {
	company, err := s.Repo.GetByOwner(ctx, ownerUserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", apperr.Forbidden("Please register your company profile before posting jobs")
		}
		return "", err
	}
	if company.Status != StatusApproved {
		return "", apperr.Forbidden("Your company profile must be approved before posting jobs")
	}
	return company.Name, nil
}
