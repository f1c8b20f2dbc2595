// Package worker provides a bounded background queue for deferred
// writes. Persistence failures on this path are logged once and
// dropped; they never propagate to a request.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chatech/widget-api/pkg/logger"
	"github.com/chatech/widget-api/pkg/metrics"
)

const taskTimeout = 10 * time.Second

type task struct {
	name string
	fn   func(context.Context) error
}

// Pool runs submitted tasks on a fixed set of workers.
type Pool struct {
	tasks  chan task
	logger *logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines consuming a queue of queueSize.
func NewPool(queueSize, workers int, log *logger.Logger) *Pool {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 2
	}

	p := &Pool{
		tasks:  make(chan task, queueSize),
		logger: log,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for t := range p.tasks {
		metrics.WorkerQueueDepth.Set(float64(len(p.tasks)))

		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		if err := t.fn(ctx); err != nil {
			p.logger.Error("background task failed",
				zap.String("task", t.name),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Submit enqueues a task without blocking. When the queue is full the
// task is dropped and logged; callers must treat submission as
// best-effort.
func (p *Pool) Submit(name string, fn func(context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("task submitted after shutdown", zap.String("task", name))
		return
	}

	select {
	case p.tasks <- task{name: name, fn: fn}:
		metrics.WorkerQueueDepth.Set(float64(len(p.tasks)))
	default:
		metrics.WorkerTasksDropped.Inc()
		p.logger.Warn("background queue full, dropping task", zap.String("task", name))
	}
}

// Shutdown stops accepting tasks and drains the queue, waiting at most
// until ctx is done.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("shutdown deadline reached with tasks pending")
	}
}
