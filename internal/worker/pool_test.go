package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatech/widget-api/pkg/logger"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := NewPool(8, 2, logger.NewNop())

	var ran int64
	done := make(chan struct{})
	p.Submit("count", func(_ context.Context) error {
		atomic.AddInt64(&ran, 1)
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	require.Equal(t, int64(1), atomic.LoadInt64(&ran))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Shutdown(ctx)
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	p := NewPool(16, 1, logger.NewNop())

	var ran int64
	for i := 0; i < 10; i++ {
		p.Submit("drain", func(_ context.Context) error {
			atomic.AddInt64(&ran, 1)
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p.Shutdown(ctx)

	require.Equal(t, int64(10), atomic.LoadInt64(&ran))
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	p := NewPool(4, 1, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Shutdown(ctx)

	// Must not panic on a closed channel, and must not run.
	var ran int64
	p.Submit("late", func(_ context.Context) error {
		atomic.AddInt64(&ran, 1)
		return nil
	})
	require.Equal(t, int64(0), atomic.LoadInt64(&ran))
}

func TestPoolContinuesAfterTaskError(t *testing.T) {
	p := NewPool(4, 1, logger.NewNop())

	p.Submit("boom", func(_ context.Context) error {
		return errors.New("boom")
	})

	done := make(chan struct{})
	p.Submit("after", func(_ context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after task error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Shutdown(ctx)
}
