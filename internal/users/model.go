package users

import (
	"time"

	"jobportal-backend/internal/access"
)

type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         access.Role `json:"role"`
	CompanyName  string      `json:"companyName,omitempty"`
	PasswordHash string      `json:"-"`
	PictureURL   string      `json:"pictureUrl,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
