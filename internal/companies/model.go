package companies

import (
	"strings"
	"time"

	"jobportal-backend/internal/shared/apperr"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, nil
	}
	return "", apperr.Validation("Invalid status value")
}

// Company is the profile a company user registers for admin review.
type Company struct {
	ID              string    `json:"id"`
	OwnerUserID     string    `json:"ownerUserId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Website         string    `json:"website,omitempty"`
	Location        string    `json:"location,omitempty"`
	Status          Status    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
