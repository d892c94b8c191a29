package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("502 bad gateway")

// script returns fn results in order, repeating the last one.
func script(results ...error) (func() (int, error), *int) {
	calls := 0
	return func() (int, error) {
		err := results[min(calls, len(results)-1)]
		calls++
		if err != nil {
			return 0, err
		}
		return calls, nil
	}, &calls
}

func quick(maxRetries int) *RetryConfig {
	return &RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestRetryWithValue(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *RetryConfig
		results    []error
		wantCalls  int
		wantErr    error
		wantValue  int
		maxRetries bool
	}{
		{"first try", quick(3), []error{nil}, 1, nil, 1, false},
		{"recovers", quick(3), []error{errTransient, errTransient, nil}, 3, nil, 3, false},
		{"gives up", quick(2), []error{errTransient}, 3, errTransient, 0, true},
		{"no retries", quick(0), []error{errTransient}, 1, errTransient, 0, true},
		{"unmarked error with read policy", ReadRetryConfig(3, time.Millisecond), []error{errTransient}, 1, errTransient, 0, false},
		{"marked error with read policy", ReadRetryConfig(3, time.Millisecond), []error{MarkRetryable(errTransient), nil}, 2, nil, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, calls := script(tt.results...)
			v, res := RetryWithValue(context.Background(), tt.cfg, fn)

			if *calls != tt.wantCalls || res.Attempts != tt.wantCalls {
				t.Errorf("calls=%d attempts=%d, want %d", *calls, res.Attempts, tt.wantCalls)
			}
			if tt.wantErr == nil && res.LastError != nil {
				t.Fatalf("unexpected error %v", res.LastError)
			}
			if tt.wantErr != nil && !errors.Is(res.LastError, tt.wantErr) {
				t.Errorf("LastError = %v, want %v", res.LastError, tt.wantErr)
			}
			if got := errors.Is(res.LastError, ErrMaxRetriesExceeded); got != tt.maxRetries {
				t.Errorf("ErrMaxRetriesExceeded = %v, want %v", got, tt.maxRetries)
			}
			if v != tt.wantValue {
				t.Errorf("value = %d, want %d", v, tt.wantValue)
			}
		})
	}
}

func TestRetryWithValue_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &RetryConfig{MaxRetries: -1, BaseDelay: time.Hour}

	calls := 0
	start := time.Now()
	_, res := RetryWithValue(ctx, cfg, func() (struct{}, error) {
		calls++
		cancel()
		return struct{}{}, errTransient
	})

	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
	if !errors.Is(res.LastError, context.Canceled) || !errors.Is(res.LastError, errTransient) {
		t.Errorf("expected cancellation joined with the last failure, got %v", res.LastError)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation should interrupt the wait")
	}
}

func TestRetryWithValue_OnRetry(t *testing.T) {
	var attempts []int
	cfg := quick(2)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
		if delay <= 0 || delay > cfg.MaxDelay {
			t.Errorf("delay %v outside (0, %v]", delay, cfg.MaxDelay)
		}
	}

	fn, _ := script(errTransient)
	RetryWithValue(context.Background(), cfg, fn)

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry called for %v, want [1 2]", attempts)
	}
}

func TestBackoff(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second, time.Second}
	for i, w := range want {
		if got := cfg.backoff(i + 1); got != w {
			t.Errorf("attempt %d: %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoff_Jitter(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: 100 * time.Millisecond, Jitter: 0.2}

	for range 50 {
		d := cfg.backoff(1)
		if d < 80*time.Millisecond || d > 120*time.Millisecond {
			t.Fatalf("jittered delay %v outside [80ms, 120ms]", d)
		}
	}
}

func TestMarkRetryable(t *testing.T) {
	if MarkRetryable(nil) != nil {
		t.Error("nil should stay nil")
	}

	wrapped := MarkRetryable(errTransient)
	if !IsRetryable(wrapped) || !errors.Is(wrapped, errTransient) {
		t.Error("marked error should be retryable and unwrap to the original")
	}
	if wrapped.Error() != errTransient.Error() {
		t.Errorf("message changed: %q", wrapped.Error())
	}
	if IsRetryable(errTransient) {
		t.Error("plain errors are not retryable")
	}
}
