package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGoRecoversPanicAndRecordsError(t *testing.T) {
	s := New(context.Background())
	s.Go("boom", func(ctx context.Context) error {
		panic("kaput")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Stop(ctx)
	if err == nil || err.Error() == "" {
		t.Fatalf("expected recorded panic error, got %v", err)
	}

	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].Panics != 1 {
		t.Fatalf("snapshot = %+v, want one task with one panic", snap)
	}
}

func TestCancelOnErrorCancelsSiblings(t *testing.T) {
	s := New(context.Background(), WithCancelOnError(true))

	released := make(chan struct{})
	s.Go0("waiter", func(ctx context.Context) {
		<-ctx.Done()
		close(released)
	})
	s.Go("failer", func(ctx context.Context) error {
		return errors.New("fatal")
	})

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatalf("sibling goroutine was not canceled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err == nil {
		t.Fatalf("expected first error to surface from Stop")
	}
}

func TestContextCanceledIsCleanExit(t *testing.T) {
	s := New(context.Background())
	s.Go("poller", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("context.Canceled should not count as failure, got %v", err)
	}
}

func TestGoRestartRetriesUntilCleanExit(t *testing.T) {
	s := New(context.Background())

	var runs atomic.Int64
	s.GoRestart("flaky", func(ctx context.Context) error {
		if runs.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithRestartBackoff(time.Millisecond, 5*time.Millisecond))

	// Stopping early would cancel the restart loop mid-backoff, so reach the
	// clean exit first.
	waitUntil(t, func() bool { return runs.Load() == 3 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop after clean exit: %v", err)
	}
	if got := runs.Load(); got != 3 {
		t.Fatalf("runs = %d, want 3", got)
	}
}

func TestGoRestartGivesUpAfterMaxRestarts(t *testing.T) {
	s := New(context.Background())

	var runs atomic.Int64
	s.GoRestart("hopeless", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("always")
	}, WithRestartBackoff(time.Millisecond, 2*time.Millisecond), WithMaxRestarts(2))

	waitUntil(t, func() bool { return s.Err() != nil })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err == nil {
		t.Fatalf("expected final error after giving up")
	}
	// initial run + 2 restarts
	if got := runs.Load(); got != 3 {
		t.Fatalf("runs = %d, want 3", got)
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestCountersTrackActiveGoroutines(t *testing.T) {
	s := New(context.Background())

	block := make(chan struct{})
	s.Go0("held", func(ctx context.Context) {
		<-block
	})

	deadline := time.Now().Add(2 * time.Second)
	for s.Counters().Active != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("active counter never reached 1: %+v", s.Counters())
		}
		time.Sleep(time.Millisecond)
	}

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if c := s.Counters(); c.Active != 0 || c.Started != 1 {
		t.Fatalf("counters = %+v, want active 0 started 1", c)
	}
}
