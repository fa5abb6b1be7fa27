package applications

import "time"

// HistoryEntry records one status change. Entries are only ever appended.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes"`
}

// JobSummary is the job data shown alongside an application.
type JobSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Status      string `json:"status"`
}

// Application is a jobseeker's application to a job. Name and Email are
// copied from the profile at submission and never refreshed. CompanyID is
// the owning company user of the job.
type Application struct {
	ID               string         `json:"id"`
	JobID            string         `json:"jobId"`
	ApplicantID      string         `json:"applicantId"`
	CompanyID        string         `json:"companyId"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Resume           string         `json:"resume,omitempty"`
	CV               string         `json:"cv,omitempty"`
	CoverLetter      string         `json:"coverLetter,omitempty"`
	Status           Status         `json:"status"`
	Notes            string         `json:"notes"`
	NotificationRead bool           `json:"notificationRead"`
	StatusHistory    []HistoryEntry `json:"statusHistory"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`

	Job *JobSummary `json:"job,omitempty"`
}

// Filter narrows listings. Empty fields match everything.
type Filter struct {
	ApplicantID string
	CompanyID   string
	JobID       string
	Status      Status
	Limit       int
	Offset      int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultLimit
	case f.Limit > maxLimit:
		return maxLimit
	default:
		return f.Limit
	}
}
