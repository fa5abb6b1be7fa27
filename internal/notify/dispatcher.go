package notify

import (
	"context"
	"sync"
	"time"

	"jobportal-backend/internal/shared/metrics"
	"jobportal-backend/internal/shared/telemetry"
)

const defaultSendTimeout = 30 * time.Second

type requestIDKey struct{}

// WithRequestID tags ctx so queued notifications carry the originating request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id set by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Dispatcher sends notifications in the background. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender) *Dispatcher {
	if sender == nil {
		sender = LogSender{}
	}
	return &Dispatcher{sender: sender, timeout: defaultSendTimeout}
}

// Dispatch schedules delivery of msgs. The request context is only used for
// its request id; delivery outlives the request.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs ...Message) {
	requestID := RequestIDFromContext(ctx)
	for _, msg := range msgs {
		if len(msg.Recipients()) == 0 {
			telemetry.Warn("notify.skipped", map[string]any{"subject": msg.Subject, "reason": "no recipients"})
			continue
		}
		d.wg.Add(1)
		go func(m Message) {
			defer d.wg.Done()
			d.deliver(requestID, m)
		}(msg)
	}
}

func (d *Dispatcher) deliver(requestID string, msg Message) {
	ctx, cancel := context.WithTimeout(WithRequestID(context.Background(), requestID), d.timeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(ctx, msg)
	metrics.ObserveNotificationDurationMs(float64(time.Since(start).Milliseconds()))

	fields := map[string]any{
		"subject":    msg.Subject,
		"recipients": len(msg.Recipients()),
	}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("notify.failed", fields)
		metrics.IncNotificationsFailed()
		return
	}
	telemetry.Info("notify.sent", fields)
	metrics.IncNotificationsSent()
}

// Wait blocks until pending deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notifier schedules best-effort delivery; *Dispatcher is the production implementation.
type Notifier interface {
	Dispatch(ctx context.Context, msgs ...Message)
}

var _ Notifier = (*Dispatcher)(nil)
