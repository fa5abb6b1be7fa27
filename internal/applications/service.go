package applications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/events"
	"jobportal-backend/internal/jobs"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/profiles"
	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/metrics"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/shared/validate"
)

// JobReader loads the job an application targets.
type JobReader interface {
	Get(ctx context.Context, id string) (jobs.Job, error)
}

// ProfileReader loads a jobseeker's profile.
type ProfileReader interface {
	GetByUserID(ctx context.Context, userID string) (profiles.Profile, error)
}

// Service runs the application workflow: authorize, mutate, then notify.
type Service struct {
	Repo     Repo
	Jobs     JobReader
	Profiles ProfileReader
	Notifier notify.Notifier
	Events   events.Publisher
	// OpsEmail receives a copy of every submission email when set.
	OpsEmail string
	Now      func() time.Time
}

func NewService(repo Repo, jobReader JobReader, profileReader ProfileReader, notifier notify.Notifier, publisher events.Publisher, opsEmail string) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		Repo:     repo,
		Jobs:     jobReader,
		Profiles: profileReader,
		Notifier: notifier,
		Events:   publisher,
		OpsEmail: opsEmail,
		Now:      time.Now,
	}
}

type SubmitInput struct {
	JobID       string `json:"jobId" validate:"required,max=64"`
	CV          string `json:"cv" validate:"max=1024"`
	CoverLetter string `json:"coverLetter" validate:"max=20000"`
}

type ListInput struct {
	Status string
	JobID  string
	Limit  int
	Offset int
}

// Get returns an application with its job summary.
func (s *Service) Get(ctx context.Context, actor *access.Actor, id string) (Application, error) {
	if actor == nil {
		return Application{}, apperr.Unauthenticated("Authentication required")
	}
	app, job, err := s.load(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if err := access.Check(actor, access.ActionView, resourceFor(app, job)); err != nil {
		return Application{}, err
	}
	if job != nil {
		app.Job = summarize(*job)
	}
	return app, nil
}

// Update applies the fields actor's role may write. A status change appends
// one history entry and notifies the applicant.
func (s *Service) Update(ctx context.Context, actor *access.Actor, id string, patch Patch) (Application, error) {
	if actor == nil {
		return Application{}, apperr.Unauthenticated("Authentication required")
	}
	app, job, err := s.load(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if err := access.Check(actor, access.ActionUpdate, resourceFor(app, job)); err != nil {
		return Application{}, err
	}
	change, err := NewChange(actor.Role, patch, s.Now().UTC())
	if err != nil {
		return Application{}, err
	}

	updated := app
	if !change.Empty() {
		var prev Status
		updated, prev, err = s.Repo.ApplyChange(ctx, id, change)
		if err != nil {
			return Application{}, err
		}
		if updated.Status != prev {
			s.statusChanged(ctx, actor, updated, prev, job, change.historyNotes())
		}
	}
	if job != nil {
		updated.Job = summarize(*job)
	}
	return updated, nil
}

// Submit creates an application for actor, who must be a jobseeker.
func (s *Service) Submit(ctx context.Context, actor *access.Actor, in SubmitInput) (Application, error) {
	if err := access.Check(actor, access.ActionCreate, access.Application("", actorID(actor), "")); err != nil {
		return Application{}, err
	}
	in.JobID = strings.TrimSpace(in.JobID)
	if in.JobID == "" {
		return Application{}, errJobIDRequired
	}

	job, err := s.Jobs.Get(ctx, in.JobID)
	if err != nil {
		return Application{}, err
	}
	exists, err := s.Repo.Exists(ctx, job.ID, actor.ID)
	if err != nil {
		return Application{}, err
	}
	profile, err := s.profile(ctx, actor.ID)
	if err != nil {
		return Application{}, err
	}

	app, err := NewApplication(Submission{
		ID:             uuid.NewString(),
		ApplicantID:    actor.ID,
		Job:            job,
		Profile:        profile,
		AlreadyApplied: exists,
		CV:             in.CV,
		CoverLetter:    in.CoverLetter,
		Now:            s.Now(),
	})
	if err != nil {
		return Application{}, err
	}
	// Field limits are checked after the duplicate check so a repeat
	// submission is always a conflict.
	if err := validate.Struct(in); err != nil {
		return Application{}, err
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}

	metrics.IncApplicationsSubmitted()
	s.dispatch(ctx, submissionEmail(app, job, s.OpsEmail))
	s.publish(ctx, events.Event{
		Type:          events.TypeApplicationSubmitted,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ApplicantID:   app.ApplicantID,
		ActorID:       actor.ID,
		To:            string(app.Status),
		At:            app.CreatedAt,
	})

	app.Job = summarize(job)
	return app, nil
}

// List returns the applications visible to actor: their own for a jobseeker,
// those for their jobs for a company, everything for an admin.
func (s *Service) List(ctx context.Context, actor *access.Actor, in ListInput) ([]Application, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	f := Filter{JobID: strings.TrimSpace(in.JobID), Limit: in.Limit, Offset: max(in.Offset, 0)}
	if in.Status != "" {
		status, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		f.Status = status
	}
	switch actor.Role {
	case access.RoleAdmin:
	case access.RoleCompany:
		f.CompanyID = actor.ID
	case access.RoleJobseeker:
		f.ApplicantID = actor.ID
	default:
		return nil, apperr.Forbidden("Access denied")
	}

	apps, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]*JobSummary)
	for i := range apps {
		summary, ok := summaries[apps[i].JobID]
		if !ok {
			if job, err := s.Jobs.Get(ctx, apps[i].JobID); err == nil {
				summary = summarize(job)
			}
			summaries[apps[i].JobID] = summary
		}
		apps[i].Job = summary
	}
	return apps, nil
}

// load returns the application and its job. A job that has vanished yields a
// nil job; ownership then falls back to the company recorded at submission.
func (s *Service) load(ctx context.Context, id string) (Application, *jobs.Job, error) {
	if strings.TrimSpace(id) == "" {
		return Application{}, nil, apperr.Validation("Application ID is required")
	}
	app, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, nil, err
	}
	job, err := s.Jobs.Get(ctx, app.JobID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return app, nil, nil
		}
		return Application{}, nil, err
	}
	return app, &job, nil
}

func (s *Service) profile(ctx context.Context, userID string) (*profiles.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// statusChanged reports a transition. notes are the ones sent with this
// update; earlier stored notes never reach the applicant.
func (s *Service) statusChanged(ctx context.Context, actor *access.Actor, app Application, prev Status, job *jobs.Job, notes string) {
	metrics.IncStatusChanges(string(app.Status))
	telemetry.Info("application.status_changed", map[string]any{
		"application_id": app.ID,
		"job_id":         app.JobID,
		"actor_id":       actor.ID,
		"from":           string(prev),
		"to":             string(app.Status),
	})

	var j jobs.Job
	if job != nil {
		j = *job
	}
	s.dispatch(ctx, statusEmail(app, j, notes))
	s.publish(ctx, events.Event{
		Type:          events.TypeStatusChanged,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ApplicantID:   app.ApplicantID,
		ActorID:       actor.ID,
		From:          string(prev),
		To:            string(app.Status),
		At:            app.UpdatedAt,
	})
}

func (s *Service) dispatch(ctx context.Context, msg notify.Message) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Dispatch(ctx, msg)
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if err := s.Events.Publish(ctx, evt); err != nil {
		telemetry.Warn("application.event_publish_failed", map[string]any{
			"application_id": evt.ApplicationID,
			"type":           evt.Type,
			"error":          err,
		})
	}
}

func resourceFor(app Application, job *jobs.Job) access.Resource {
	companyID := app.CompanyID
	if job != nil {
		companyID = job.CompanyID
	}
	return access.Application(app.ID, app.ApplicantID, companyID)
}

func actorID(actor *access.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
