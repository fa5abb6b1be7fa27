package notify

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
	"gopkg.in/gomail.v2"

	"jobportal-backend/internal/queue"
	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/telemetry"
)

func quietTelemetry(t *testing.T) {
	t.Helper()
	prev := telemetry.Output
	telemetry.Output = io.Discard
	t.Cleanup(func() { telemetry.Output = prev })
}

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingSender) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func TestRecipientsDedupesAndTrims(t *testing.T) {
	msg := Message{To: []string{" seeker@example.com", "", "SEEKER@example.com", "ops@example.com"}}
	assert.Equal(t, []string{"seeker@example.com", "ops@example.com"}, msg.Recipients())
}

func TestLogSenderRequiresRecipient(t *testing.T) {
	quietTelemetry(t)
	assert.ErrorIs(t, LogSender{}.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipients)
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x"}))
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{dialer: d, from: "no-reply@jobportal.local"}

	err := s.Send(context.Background(), Message{
		To:      []string{"seeker@example.com"},
		Subject: "Application Update: Go Engineer",
		Body:    "You have been shortlisted.",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"no-reply@jobportal.local"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"seeker@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Application Update: Go Engineer"}, d.sent[0].GetHeader("Subject"))
}

func TestSMTPSenderWrapsDialError(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	s := &SMTPSender{dialer: d, from: "no-reply@jobportal.local"}
	err := s.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send")
}

func TestNewSMTPSenderRequiresHost(t *testing.T) {
	_, err := NewSMTPSender("", 587, "", "", "no-reply@jobportal.local")
	assert.Error(t, err)
}

type recordingQueue struct {
	msgs []queue.Message
}

func (r *recordingQueue) Send(_ context.Context, msg queue.Message) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestQueueSenderEnqueues(t *testing.T) {
	q := &recordingQueue{}
	s := NewQueueSender(q)
	s.now = func() time.Time { return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) }

	ctx := WithRequestID(context.Background(), "req-9")
	require.NoError(t, s.Send(ctx, Message{To: []string{"seeker@example.com"}, Subject: "s", Body: "b"}))
	require.Len(t, q.msgs, 1)
	got := q.msgs[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "req-9", got.RequestID)
	assert.Equal(t, "2026-03-01T12:00:00Z", got.EnqueuedAt)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, Message{To: []string{"seeker@example.com"}, Subject: "s", Body: "b"}, FromQueue(got))
}

func TestDispatcherDeliversInBackground(t *testing.T) {
	quietTelemetry(t)
	rec := &recordingSender{}
	d := NewDispatcher(rec)

	d.Dispatch(context.Background(),
		Message{To: []string{"seeker@example.com"}, Subject: "one"},
		Message{To: []string{"ops@example.com"}, Subject: "two"},
		Message{Subject: "nobody"},
	)
	require.NoError(t, d.Wait(context.Background()))

	subjects := []string{}
	for _, m := range rec.messages() {
		subjects = append(subjects, m.Subject)
	}
	assert.ElementsMatch(t, []string{"one", "two"}, subjects)
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	quietTelemetry(t)
	rec := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(rec)

	d.Dispatch(context.Background(), Message{To: []string{"seeker@example.com"}, Subject: "x"})
	require.NoError(t, d.Wait(context.Background()))
	assert.Len(t, rec.messages(), 1)
}

type blockingSender struct {
	release chan struct{}
}

func (b blockingSender) Send(ctx context.Context, _ Message) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestDispatcherWaitHonoursContext(t *testing.T) {
	quietTelemetry(t)
	release := make(chan struct{})
	d := NewDispatcher(blockingSender{release: release})
	d.Dispatch(context.Background(), Message{To: []string{"a@example.com"}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, d.Wait(context.Background()))
}

func TestRequestIDRoundTrip(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Equal(t, "r-1", RequestIDFromContext(WithRequestID(context.Background(), "r-1")))
	assert.True(t, strings.HasPrefix(RequestIDFromContext(WithRequestID(context.Background(), "req-2")), "req"))
}

func TestDeliverySender(t *testing.T) {
	s, err := DeliverySender(config.Config{})
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	s, err = DeliverySender(config.Config{SMTPHost: "smtp.local", SMTPPort: 25, NotifyFrom: "no-reply@jobportal.local"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)
}
