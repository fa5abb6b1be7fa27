package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/shared/apperr"
	sharedauth "jobportal-backend/internal/shared/auth"
	"jobportal-backend/internal/shared/validate"
)

var errInvalidCredentials = apperr.Unauthenticated("Invalid email or password")

type Service struct {
	Repo        Repo
	adminEmails map[string]struct{}
	now         func() time.Time
}

// NewService builds the users service. Accounts whose email is listed in
// adminEmails act as admins.
func NewService(repo Repo, adminEmails []string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Service{Repo: repo, adminEmails: admins, now: time.Now}
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        string `json:"role" validate:"omitempty,oneof=jobseeker company"`
	CompanyName string `json:"companyName" validate:"required_if=Role company,max=200"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OAuthProfile is the identity returned by an external provider.
type OAuthProfile struct {
	Email   string
	Name    string
	Picture string
}

// Register creates a credentials account. Admin is never self-assigned; it
// comes from the configured admin list.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}
	hash, err := sharedauth.HashPassword(in.Password)
	if err != nil {
		return User{}, apperr.Validation("password: must be at least 8 characters long")
	}

	role := access.RoleJobseeker
	if in.Role != "" {
		role, _ = access.ParseRole(in.Role)
	}
	now := s.now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		Role:         s.roleFor(in.Email, role),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == access.RoleCompany {
		user.CompanyName = strings.TrimSpace(in.CompanyName)
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Login verifies credentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (User, error) {
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}
	user, err := s.Repo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, errInvalidCredentials
		}
		return User{}, err
	}
	if !sharedauth.CheckPassword(user.PasswordHash, in.Password) {
		return User{}, errInvalidCredentials
	}
	user.Role = s.roleFor(user.Email, user.Role)
	return user, nil
}

// SignInOAuth finds or creates the account for an external identity. New
// accounts start as job seekers.
func (s *Service) SignInOAuth(ctx context.Context, p OAuthProfile) (User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return User{}, apperr.Validation("identity provider returned no email")
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user.Name = firstNonEmpty(strings.TrimSpace(p.Name), user.Name)
		user.PictureURL = firstNonEmpty(p.Picture, user.PictureURL)
		if err := s.Repo.UpdateProfile(ctx, user); err != nil {
			return User{}, err
		}
	case errors.Is(err, ErrNotFound):
		now := s.now().UTC()
		user = User{
			ID:         uuid.NewString(),
			Email:      email,
			Name:       strings.TrimSpace(p.Name),
			Role:       s.roleFor(email, access.RoleJobseeker),
			PictureURL: p.Picture,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.Repo.Create(ctx, user); err != nil {
			return User{}, err
		}
	default:
		return User{}, err
	}
	user.Role = s.roleFor(user.Email, user.Role)
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, apperr.Validation("user id is required")
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.Role = s.roleFor(user.Email, user.Role)
	return user, nil
}

// IssueToken signs a session token carrying the user's role.
func (s *Service) IssueToken(user User) (string, error) {
	claims := sharedauth.Claims{
		Email:   user.Email,
		Name:    user.Name,
		Role:    string(user.Role),
		Picture: user.PictureURL,
	}
	claims.Subject = user.ID
	return sharedauth.SignJWT(claims)
}

func (s *Service) roleFor(email string, role access.Role) access.Role {
	if _, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(email))]; ok {
		return access.RoleAdmin
	}
	return role
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
