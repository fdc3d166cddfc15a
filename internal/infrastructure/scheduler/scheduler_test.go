package scheduler_test

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/infrastructure/scheduler"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestScheduler_RunsJobOnInterval(t *testing.T) {
	var runs int32
	s := scheduler.New(testLogger())
	s.Add(scheduler.Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(55 * time.Millisecond)
	cancel()
	s.Wait()

	if n := atomic.LoadInt32(&runs); n < 2 {
		t.Fatalf("expected repeated runs, got %d", n)
	}

	// No runs after shutdown.
	after := atomic.LoadInt32(&runs)
	time.Sleep(30 * time.Millisecond)
	if n := atomic.LoadInt32(&runs); n != after {
		t.Fatalf("job ran after stop: %d -> %d", after, n)
	}
}

func TestScheduler_JobErrorDoesNotStopTicker(t *testing.T) {
	var runs int32
	s := scheduler.New(testLogger())
	s.Add(scheduler.Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return fmt.Errorf("transient failure")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(55 * time.Millisecond)
	cancel()
	s.Wait()

	if n := atomic.LoadInt32(&runs); n < 2 {
		t.Fatalf("expected the job to keep running after errors, got %d runs", n)
	}
}
