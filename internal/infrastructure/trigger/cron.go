package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"autoblogger/internal/ports"
)

// CronTrigger fires the due-job scan on a cron expression. The scan itself
// decides which schedules are due; the trigger only supplies the heartbeat.
type CronTrigger struct {
	spec     string
	location *time.Location

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

var _ ports.Trigger = (*CronTrigger)(nil)

// NewCronTrigger builds a trigger from a cron expression and timezone.
func NewCronTrigger(spec string, location *time.Location) *CronTrigger {
	if location == nil {
		location = time.UTC
	}
	return &CronTrigger{spec: spec, location: location}
}

// Start registers the scan and begins firing. The job also runs once
// immediately so a restart does not wait a full interval to catch up on
// overdue schedules.
func (t *CronTrigger) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	runner := cron.New(cron.WithLocation(t.location))
	if _, err := runner.AddFunc(t.spec, func() {
		job(time.Now().In(t.location))
	}); err != nil {
		return fmt.Errorf("add cron job %q: %w", t.spec, err)
	}

	t.cron = runner
	t.started = true
	runner.Start()

	go job(time.Now().In(t.location))

	return nil
}

// Stop halts the trigger and waits for an in-flight scan to finish.
func (t *CronTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return nil
	}
	t.started = false

	stopCtx := t.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
