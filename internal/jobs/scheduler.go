package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jobportal-backend/internal/shared/metrics"
	"jobportal-backend/internal/shared/telemetry"
)

const sweepTimeout = time.Minute

type expirer interface {
	CloseExpired(ctx context.Context) (int, error)
}

// ExpiryScheduler periodically closes jobs whose application deadline passed.
type ExpiryScheduler struct {
	cron *cron.Cron
	svc  expirer
}

// NewExpiryScheduler registers the sweep on schedule, a cron expression or descriptor such as "@every 1h".
func NewExpiryScheduler(svc expirer, schedule string) (*ExpiryScheduler, error) {
	s := &ExpiryScheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		svc:  svc,
	}
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("schedule job expiry %q: %w", schedule, err)
	}
	return s, nil
}

// Sweep runs one expiry pass.
func (s *ExpiryScheduler) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	closed, err := s.svc.CloseExpired(ctx)
	if err != nil {
		telemetry.Error("jobs.expiry.failed", map[string]any{"error": err})
		return
	}
	metrics.AddJobsExpired(closed)
	if closed > 0 {
		telemetry.Info("jobs.expiry.closed", map[string]any{"count": closed})
	}
}

func (s *ExpiryScheduler) Start() { s.cron.Start() }

// Stop halts scheduling and returns a context that is done once a running sweep finishes.
func (s *ExpiryScheduler) Stop() context.Context { return s.cron.Stop() }
