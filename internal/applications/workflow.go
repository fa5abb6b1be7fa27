package applications

import (
	"strings"
	"time"

	"jobportal-backend/internal/jobs"
	"jobportal-backend/internal/profiles"
	"jobportal-backend/internal/shared/apperr"
)

var (
	ErrNotAccepting     = apperr.Conflict("This job is no longer accepting applications")
	ErrAlreadyApplied   = apperr.Conflict("You have already applied for this job")
	ErrProfileRequired  = apperr.Validation("Please complete your profile before applying")
	ErrDocumentRequired = apperr.Validation("Either a resume or a CV is required to apply")

	errJobIDRequired = apperr.Validation("jobId: is required").WithDetails(map[string]string{"jobId": "is required"})
)

// Submission is everything needed to decide a new application. The caller
// loads the job, the applicant's profile (nil when missing) and whether an
// application already exists.
type Submission struct {
	ID             string
	ApplicantID    string
	Job            jobs.Job
	Profile        *profiles.Profile
	AlreadyApplied bool
	CV             string
	CoverLetter    string
	Now            time.Time
}

// NewApplication checks a submission in order: job open, not a duplicate,
// profile present, some document present.
func NewApplication(s Submission) (Application, error) {
	if !s.Job.AcceptingApplications(s.Now) {
		return Application{}, ErrNotAccepting
	}
	if s.AlreadyApplied {
		return Application{}, ErrAlreadyApplied
	}
	if s.Profile == nil {
		return Application{}, ErrProfileRequired
	}
	cv := strings.TrimSpace(s.CV)
	if !s.Profile.HasResume() && cv == "" {
		return Application{}, ErrDocumentRequired
	}

	now := s.Now.UTC()
	return Application{
		ID:            s.ID,
		JobID:         s.Job.ID,
		ApplicantID:   s.ApplicantID,
		CompanyID:     s.Job.CompanyID,
		Name:          s.Profile.Name,
		Email:         s.Profile.Email,
		Resume:        s.Profile.Resume,
		CV:            cv,
		CoverLetter:   strings.TrimSpace(s.CoverLetter),
		Status:        StatusPending,
		StatusHistory: []HistoryEntry{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func summarize(job jobs.Job) *JobSummary {
	return &JobSummary{
		ID:          job.ID,
		Title:       job.Title,
		CompanyID:   job.CompanyID,
		CompanyName: job.CompanyName,
		Location:    job.Location,
		Type:        job.Type,
		Status:      string(job.Status),
	}
}
