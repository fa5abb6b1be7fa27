package jobs

import (
	"strings"
	"time"

	"jobportal-backend/internal/shared/apperr"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
	StatusDraft  Status = "draft"
)

// ParseStatus accepts the three posting states; anything else is a validation error.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusActive, StatusClosed, StatusDraft:
		return s, nil
	}
	return "", apperr.Validation("Invalid job status")
}

// Job is a posting owned by a company user. CompanyID is the owning user's id.
type Job struct {
	ID                  string     `json:"id"`
	CompanyID           string     `json:"companyId"`
	CompanyName         string     `json:"companyName"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Location            string     `json:"location"`
	Type                string     `json:"type"`
	Status              Status     `json:"status"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// AcceptingApplications reports whether the job is active and its deadline,
// if any, has not passed.
func (j Job) AcceptingApplications(now time.Time) bool {
	if j.Status != StatusActive {
		return false
	}
	return j.ApplicationDeadline == nil || !now.After(*j.ApplicationDeadline)
}

// Filter narrows job listings.
type Filter struct {
	Status    Status
	CompanyID string
	Limit     int
	Offset    int
}
