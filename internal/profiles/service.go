package profiles

import (
	"context"
	"strings"
	"time"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/validate"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

type SaveInput struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Email      string   `json:"email" validate:"required,email,max=320"`
	Phone      string   `json:"phone" validate:"max=50"`
	Resume     string   `json:"resume" validate:"max=1024"`
	Skills     []string `json:"skills" validate:"max=100,dive,max=100"`
	Experience string   `json:"experience" validate:"max=10000"`
	Education  string   `json:"education" validate:"max=10000"`
}

func requireJobseeker(actor *access.Actor) error {
	if actor == nil {
		return apperr.Unauthenticated("Authentication required")
	}
	if actor.Role != access.RoleJobseeker {
		return apperr.Forbidden("Only job seekers have a profile")
	}
	return nil
}

// Get returns the actor's own profile.
func (s *Service) Get(ctx context.Context, actor *access.Actor) (Profile, error) {
	if err := requireJobseeker(actor); err != nil {
		return Profile{}, err
	}
	return s.Repo.Get(ctx, actor.ID)
}

// GetByUserID is the lookup used when a jobseeker applies.
func (s *Service) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	return s.Repo.Get(ctx, userID)
}

// Save creates or replaces the actor's profile. Name and email default to the
// account's values.
func (s *Service) Save(ctx context.Context, actor *access.Actor, in SaveInput) (Profile, error) {
	if err := requireJobseeker(actor); err != nil {
		return Profile{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		in.Name = actor.Name
	}
	if in.Email == "" {
		in.Email = actor.Email
	}
	if err := validate.Struct(in); err != nil {
		return Profile{}, err
	}

	now := s.Now().UTC()
	return s.Repo.Upsert(ctx, Profile{
		UserID:     actor.ID,
		Name:       in.Name,
		Email:      strings.ToLower(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Resume:     strings.TrimSpace(in.Resume),
		Skills:     cleanSkills(in.Skills),
		Experience: in.Experience,
		Education:  in.Education,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func cleanSkills(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
