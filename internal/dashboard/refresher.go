package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/util"
)

// Refreshable is anything the Refresher can drive.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher refreshes a dashboard on a fixed interval until stopped.
type Refresher struct {
	target   Refreshable
	interval time.Duration
	onResult func(error)

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewRefresher creates a refresher. onResult, if non-nil, is called after
// every completed cycle, including ones started by Trigger.
func NewRefresher(target Refreshable, interval time.Duration, onResult func(error)) *Refresher {
	return &Refresher{
		target:   target,
		interval: interval,
		onResult: onResult,
	}
}

// Start schedules periodic refreshes and runs one immediately. A tick
// that fires while a cycle is still running is skipped.
func (r *Refresher) Start(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("invalid refresh interval %s", r.interval)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	logger := cronLogger{}
	r.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := r.cron.AddFunc("@every "+r.interval.String(), r.tick); err != nil {
		r.cancel()
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.cron.Start()
	r.running = true

	logging.Debug("refresher started", "interval", r.interval, logging.Component("dashboard"))
	r.triggerLocked()
	return nil
}

// Trigger starts an out-of-schedule refresh in the background. It is a
// no-op when the refresher is stopped.
func (r *Refresher) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.triggerLocked()
}

func (r *Refresher) triggerLocked() {
	util.SafeGoGroup(&r.wg, "dashboard-refresh", r.tick)
}

func (r *Refresher) tick() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	err := r.target.Refresh(ctx)
	if errors.Is(err, ErrRefreshInProgress) {
		return
	}
	if r.onResult != nil {
		r.onResult(err)
	}
}

// Stop cancels any running cycle and waits for it to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	c := r.cron
	r.mu.Unlock()

	<-c.Stop().Done()
	r.wg.Wait()
	logging.Debug("refresher stopped", logging.Component("dashboard"))
}

// cronLogger routes cron's logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug(msg, append(keysAndValues, logging.Component("cron"))...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error(msg, append(keysAndValues, logging.Err(err), logging.Component("cron"))...)
}
