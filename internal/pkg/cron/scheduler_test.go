package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce_ExecutesEveryJob(t *testing.T) {
	s := NewScheduler()

	var first, second atomic.Int32
	s.AddJob("first", time.Hour, func(ctx context.Context) error {
		first.Add(1)
		return nil
	})
	s.AddJob("second", time.Hour, func(ctx context.Context) error {
		second.Add(1)
		return errors.New("boom")
	})

	s.RunOnce(context.Background())

	// A failing job must not stop the others
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestScheduler_Start_RunsJobImmediately(t *testing.T) {
	s := NewScheduler()

	ran := make(chan struct{})
	var once atomic.Bool
	s.AddJob("sweep", time.Hour, func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(ran)
		}
		return nil
	})

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestScheduler_Stop_WaitsForJobsAndCancelsContext(t *testing.T) {
	s := NewScheduler()

	started := make(chan struct{})
	var sawCancel atomic.Bool
	s.AddJob("long", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-ctx.Done():
			sawCancel.Store(true)
		case <-time.After(2 * time.Second):
		}
		return nil
	})

	s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return")
	}

	require.True(t, sawCancel.Load(), "running job must observe cancellation")
}

func TestScheduler_Start_NoJobsIsValid(t *testing.T) {
	s := NewScheduler()
	s.Start()
	s.Stop()
}
