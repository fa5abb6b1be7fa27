package applications

import (
	"strings"

	"jobportal-backend/internal/shared/apperr"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusReviewed    Status = "reviewed"
	StatusShortlisted Status = "shortlisted"
	StatusInterview   Status = "interview"
	StatusHired       Status = "hired"
	StatusRejected    Status = "rejected"
	StatusAccepted    Status = "accepted"
)

// Statuses lists every application status. Any status may follow any other.
var Statuses = []Status{
	StatusPending,
	StatusReviewed,
	StatusShortlisted,
	StatusInterview,
	StatusHired,
	StatusRejected,
	StatusAccepted,
}

var ErrInvalidStatus = apperr.Validation("Invalid status value")

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}
