package applications

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/events"
	"jobportal-backend/internal/jobs"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/profiles"
	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/telemetry"
)

type stubJobs map[string]jobs.Job

func (s stubJobs) Get(_ context.Context, id string) (jobs.Job, error) {
	job, ok := s[id]
	if !ok {
		return jobs.Job{}, jobs.ErrNotFound
	}
	return job, nil
}

type stubProfiles map[string]profiles.Profile

func (s stubProfiles) GetByUserID(_ context.Context, userID string) (profiles.Profile, error) {
	p, ok := s[userID]
	if !ok {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	return p, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, msgs ...notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msgs...)
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

var (
	fixedNow = time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
	companyC = &access.Actor{ID: "company-c", Role: access.RoleCompany}
	companyD = &access.Actor{ID: "company-d", Role: access.RoleCompany}
	seekerU  = &access.Actor{ID: "seeker-u", Role: access.RoleJobseeker}
	seekerV  = &access.Actor{ID: "seeker-v", Role: access.RoleJobseeker}
	admin    = &access.Actor{ID: "admin-1", Role: access.RoleAdmin}
)

type fixture struct {
	svc      *Service
	notifier *recordingNotifier
	events   *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	prev := telemetry.Output
	telemetry.Output = io.Discard
	t.Cleanup(func() { telemetry.Output = prev })

	deadline := fixedNow.Add(24 * time.Hour)
	past := fixedNow.Add(-time.Hour)
	jobReader := stubJobs{
		"job-j":      {ID: "job-j", CompanyID: companyC.ID, CompanyName: "Acme", Title: "Go Engineer", Status: jobs.StatusActive, ApplicationDeadline: &deadline},
		"job-closed": {ID: "job-closed", CompanyID: companyC.ID, CompanyName: "Acme", Title: "Old", Status: jobs.StatusClosed},
		"job-late":   {ID: "job-late", CompanyID: companyC.ID, CompanyName: "Acme", Title: "Late", Status: jobs.StatusActive, ApplicationDeadline: &past},
	}
	profileReader := stubProfiles{
		seekerU.ID: {UserID: seekerU.ID, Name: "Uma", Email: "uma@example.com"},
		seekerV.ID: {UserID: seekerV.ID, Name: "Vic", Email: "vic@example.com", Resume: "uploads/v/resume.pdf"},
	}
	n := &recordingNotifier{}
	p := &recordingPublisher{}
	svc := NewService(NewMemoryRepo(), jobReader, profileReader, n, p, "ops@jobportal.test")
	svc.Now = func() time.Time { return fixedNow }
	return fixture{svc: svc, notifier: n, events: p}
}

func (f fixture) submitU(t *testing.T) Application {
	t.Helper()
	app, err := f.svc.Submit(context.Background(), seekerU, SubmitInput{JobID: "job-j", CV: "uploads/u/cv.pdf"})
	require.NoError(t, err)
	return app
}

func TestShortlistingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.submitU(t)
	assert.Equal(t, StatusPending, app.Status)
	assert.Empty(t, app.StatusHistory)
	assert.Equal(t, "Uma", app.Name)
	require.NotNil(t, app.Job)
	assert.Equal(t, "Go Engineer", app.Job.Title)

	submitted := f.notifier.messages()
	require.Len(t, submitted, 1)
	assert.Equal(t, "Application Submitted: Go Engineer at Acme", submitted[0].Subject)
	assert.Equal(t, []string{"uma@example.com", "ops@jobportal.test"}, submitted[0].To)

	updated, err := f.svc.Update(ctx, companyC, app.ID, Patch{Status: strPtr("shortlisted"), Notes: strPtr("great fit")})
	require.NoError(t, err)
	assert.Equal(t, StatusShortlisted, updated.Status)
	require.Len(t, updated.StatusHistory, 1)
	assert.Equal(t, HistoryEntry{Status: StatusShortlisted, Timestamp: fixedNow, Notes: "great fit"}, updated.StatusHistory[0])

	sent := f.notifier.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, []string{"uma@example.com"}, sent[1].To)
	assert.Equal(t, "Application Status Update: Congratulations! You've been shortlisted", sent[1].Subject)
	assert.Contains(t, sent[1].Body, "Go Engineer position at Acme")
	assert.Contains(t, sent[1].Body, "great fit")

	require.Len(t, f.events.events, 2)
	assert.Equal(t, events.TypeApplicationSubmitted, f.events.events[0].Type)
	assert.Equal(t, events.TypeStatusChanged, f.events.events[1].Type)
	assert.Equal(t, "pending", f.events.events[1].From)
	assert.Equal(t, "shortlisted", f.events.events[1].To)
}

func TestSecondSubmissionConflicts(t *testing.T) {
	f := newFixture(t)
	f.submitU(t)

	_, err := f.svc.Submit(context.Background(), seekerU, SubmitInput{JobID: "job-j", CV: "uploads/u/cv2.pdf"})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSecondSubmissionConflictsRegardlessOfFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.submitU(t)
	long := strings.Repeat("x", 1025)

	_, err := f.svc.Submit(ctx, seekerU, SubmitInput{JobID: "job-j", CV: long})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.Submit(ctx, seekerV, SubmitInput{JobID: "job-j", CV: long})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.svc.Submit(ctx, seekerV, SubmitInput{JobID: "  "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRepoUniquenessCatchesRacingSubmission(t *testing.T) {
	f := newFixture(t)
	repo := f.svc.Repo
	app := Application{ID: "a-1", JobID: "job-j", ApplicantID: seekerU.ID, CV: "x"}
	require.NoError(t, repo.Create(context.Background(), app))
	app.ID = "a-2"
	assert.ErrorIs(t, repo.Create(context.Background(), app), ErrAlreadyApplied)
}

func TestSubmitPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, seekerU, SubmitInput{JobID: "job-j"})
	assert.ErrorIs(t, err, ErrDocumentRequired)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	app, err := f.svc.Submit(ctx, seekerV, SubmitInput{JobID: "job-j"})
	require.NoError(t, err)
	assert.Equal(t, "uploads/v/resume.pdf", app.Resume)

	_, err = f.svc.Submit(ctx, &access.Actor{ID: "seeker-w", Role: access.RoleJobseeker}, SubmitInput{JobID: "job-j", CV: "c"})
	assert.ErrorIs(t, err, ErrProfileRequired)

	_, err = f.svc.Submit(ctx, seekerU, SubmitInput{JobID: "job-closed", CV: "c"})
	assert.ErrorIs(t, err, ErrNotAccepting)
	_, err = f.svc.Submit(ctx, seekerU, SubmitInput{JobID: "job-late", CV: "c"})
	assert.ErrorIs(t, err, ErrNotAccepting)

	_, err = f.svc.Submit(ctx, seekerU, SubmitInput{JobID: "missing", CV: "c"})
	assert.ErrorIs(t, err, jobs.ErrNotFound)

	_, err = f.svc.Submit(ctx, companyC, SubmitInput{JobID: "job-j", CV: "c"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.Submit(ctx, nil, SubmitInput{JobID: "job-j", CV: "c"})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	_, err = f.svc.Submit(ctx, seekerU, SubmitInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestViewAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submitU(t)

	for _, actor := range []*access.Actor{seekerU, companyC, admin} {
		got, err := f.svc.Get(ctx, actor, app.ID)
		require.NoError(t, err, actor.ID)
		assert.Equal(t, "Acme", got.Job.CompanyName)
	}

	_, err := f.svc.Get(ctx, seekerV, app.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Get(ctx, companyD, app.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Get(ctx, nil, app.ID)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = f.svc.Get(ctx, admin, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobseekerPatchIgnoresStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submitU(t)

	got, err := f.svc.Update(ctx, seekerU, app.ID, Patch{Status: strPtr("hired")})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.StatusHistory)

	got, err = f.svc.Update(ctx, seekerU, app.ID, Patch{NotificationRead: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, got.NotificationRead)
	assert.Equal(t, StatusPending, got.Status)

	assert.Len(t, f.notifier.messages(), 1)

	_, err = f.svc.Update(ctx, seekerV, app.ID, Patch{NotificationRead: boolPtr(true)})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRepeatedStatusPatchAppendsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submitU(t)

	for range 2 {
		_, err := f.svc.Update(ctx, companyC, app.ID, Patch{Status: strPtr("reviewed")})
		require.NoError(t, err)
	}
	got, err := f.svc.Get(ctx, admin, app.ID)
	require.NoError(t, err)
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, StatusReviewed, got.StatusHistory[0].Status)

	// submission email plus one status email
	assert.Len(t, f.notifier.messages(), 2)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	app := f.submitU(t)

	_, err := f.svc.Update(context.Background(), admin, app.ID, Patch{Status: strPtr("promoted")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	got, err := f.svc.Get(context.Background(), admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestStatusEmailOmitsEarlierNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submitU(t)

	_, err := f.svc.Update(ctx, companyC, app.ID, Patch{Notes: strPtr("internal: weak references")})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, companyC, app.ID, Patch{Status: strPtr("shortlisted")})
	require.NoError(t, err)

	sent := f.notifier.messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].Body, "shortlisted")
	assert.NotContains(t, sent[1].Body, "Notes from the employer")
	assert.NotContains(t, sent[1].Body, "weak references")
}

func TestStatusEmailWithoutJob(t *testing.T) {
	app := Application{Name: "Uma", Email: "uma@example.com", Status: StatusShortlisted}

	msg := statusEmail(app, jobs.Job{}, "")
	assert.Contains(t, msg.Body, "Congratulations! You've been shortlisted.\n")
	assert.NotContains(t, msg.Body, "position")

	msg = statusEmail(app, jobs.Job{Title: "Go Engineer"}, "")
	assert.Contains(t, msg.Body, "for the Go Engineer position.\n")
	assert.NotContains(t, msg.Body, " at ")
}

func TestPublishFailureDoesNotFailUpdate(t *testing.T) {
	f := newFixture(t)
	app := f.submitU(t)
	f.events.err = errors.New("redis down")

	got, err := f.svc.Update(context.Background(), companyC, app.ID, Patch{Status: strPtr("interview")})
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, got.Status)
}

func TestListScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.submitU(t)
	_, err := f.svc.Submit(ctx, seekerV, SubmitInput{JobID: "job-j"})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, seekerU, ListInput{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, seekerU.ID, mine[0].ApplicantID)
	require.NotNil(t, mine[0].Job)

	forC, err := f.svc.List(ctx, companyC, ListInput{JobID: "job-j"})
	require.NoError(t, err)
	assert.Len(t, forC, 2)

	forD, err := f.svc.List(ctx, companyD, ListInput{})
	require.NoError(t, err)
	assert.Empty(t, forD)

	pending, err := f.svc.List(ctx, admin, ListInput{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.svc.List(ctx, admin, ListInput{Status: "bogus"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListClampsNegativeOffset(t *testing.T) {
	f := newFixture(t)
	f.submitU(t)

	got, err := f.svc.List(context.Background(), seekerU, ListInput{Offset: -1})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	raw, err := f.svc.Repo.List(context.Background(), Filter{ApplicantID: seekerU.ID, Offset: -5})
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}
