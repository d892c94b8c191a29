package util

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// ErrMaxRetriesExceeded is joined with the last error once attempts run out.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

// RetryConfig is an exponential backoff policy.
type RetryConfig struct {
	MaxRetries int // retries after the first attempt; negative means unlimited
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64 // fraction of each delay randomized, 0 to 1

	// RetryIf filters errors worth another attempt. nil retries everything.
	RetryIf func(error) bool
	// OnRetry is called before each wait with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// ReadRetryConfig is the policy for idempotent backend reads. Only errors
// wrapped with MarkRetryable are retried; mutations never go through Retry.
func ReadRetryConfig(maxRetries int, baseDelay time.Duration) *RetryConfig {
	return &RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   5 * time.Second,
		Jitter:     0.2,
		RetryIf:    IsRetryable,
	}
}

// RetryResult reports how a retried call ended.
type RetryResult struct {
	Attempts  int
	LastError error
	Duration  time.Duration
}

// RetryWithValue calls fn until it succeeds, the policy gives up or ctx is
// done.
func RetryWithValue[T any](ctx context.Context, cfg *RetryConfig, fn func() (T, error)) (T, *RetryResult) {
	var zero T
	start := time.Now()
	res := &RetryResult{}
	done := func(err error) *RetryResult {
		res.LastError = err
		res.Duration = time.Since(start)
		return res
	}

	for {
		res.Attempts++
		v, err := fn()
		switch {
		case err == nil:
			return v, done(nil)
		case cfg.RetryIf != nil && !cfg.RetryIf(err):
			return zero, done(err)
		case cfg.MaxRetries >= 0 && res.Attempts > cfg.MaxRetries:
			return zero, done(errors.Join(ErrMaxRetriesExceeded, err))
		}

		delay := cfg.backoff(res.Attempts)
		if cfg.OnRetry != nil {
			cfg.OnRetry(res.Attempts, err, delay)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, done(errors.Join(ctx.Err(), err))
		case <-t.C:
		}
	}
}

// backoff doubles BaseDelay per failed attempt, then applies jitter and
// the MaxDelay cap.
func (c *RetryConfig) backoff(attempt int) time.Duration {
	d := c.BaseDelay
	for i := 1; i < attempt && (c.MaxDelay <= 0 || d < c.MaxDelay); i++ {
		d *= 2
	}
	if c.Jitter > 0 {
		spread := float64(d) * c.Jitter
		d += time.Duration((rand.Float64()*2 - 1) * spread)
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// RetryableError marks a transient failure.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// MarkRetryable wraps err so IsRetryable reports true. nil stays nil.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func IsRetryable(err error) bool {
	var r *RetryableError
	return errors.As(err, &r)
}
