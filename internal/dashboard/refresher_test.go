package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingTarget struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (c *countingTarget) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return c.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRefresher_RunsImmediately(t *testing.T) {
	target := &countingTarget{}
	results := make(chan error, 4)
	r := NewRefresher(target, time.Hour, func(err error) { results <- err })

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	select {
	case err := <-results:
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh did not run")
	}
}

func TestRefresher_TriggerAndResults(t *testing.T) {
	boom := errors.New("boom")
	target := &countingTarget{err: boom}
	results := make(chan error, 4)
	r := NewRefresher(target, time.Hour, func(err error) { results <- err })

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-results
	r.Trigger()
	if err := <-results; !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	r.Stop()

	if n := target.calls.Load(); n != 2 {
		t.Errorf("expected 2 refreshes, got %d", n)
	}
}

func TestRefresher_StopCancelsRunningCycle(t *testing.T) {
	target := &countingTarget{block: make(chan struct{})}
	r := NewRefresher(target, time.Hour, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return target.calls.Load() == 1 })

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the running refresh")
	}

	r.Trigger()
	if n := target.calls.Load(); n != 1 {
		t.Errorf("Trigger after Stop should be a no-op, got %d calls", n)
	}
}

func TestRefresher_SkipsWhileDashboardBusy(t *testing.T) {
	b := newBackend()
	b.block = make(chan struct{})
	dash := New(b, fixedPrice{}, Options{})

	var results atomic.Int32
	r := NewRefresher(dash, time.Hour, func(error) { results.Add(1) })
	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return b.stakeCalls.Load() == 1 })

	// A manual refresh while one is running is dropped, not queued.
	r.Trigger()
	time.Sleep(20 * time.Millisecond)
	close(b.block)
	r.Stop()

	if n := b.stakeCalls.Load(); n != 1 {
		t.Errorf("expected 1 stake fetch, got %d", n)
	}
	if n := results.Load(); n != 1 {
		t.Errorf("expected 1 reported result, got %d", n)
	}
}

func TestRefresher_InvalidInterval(t *testing.T) {
	r := NewRefresher(&countingTarget{}, 0, nil)
	if err := r.Start(context.Background()); err == nil {
		t.Error("expected error for zero interval")
	}
}
