package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPoolClosed = errors.New("dispatch: pool is shut down")
	ErrQueueFull  = errors.New("dispatch: task queue is full")
)

// Op is a unit of work executed on a pool worker.
type Op func(ctx context.Context) (any, error)

// Result carries the outcome of a dispatched task.
type Result struct {
	Value any
	Err   error
}

// Task is a handle to a submitted operation. The result channel receives
// exactly one value and is then closed.
type Task struct {
	ID     string
	Name   string
	result chan Result
}

// Wait blocks until the task completes or the context is done.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case res := <-t.result:
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type queued struct {
	task *Task
	op   Op
}

// Pool runs index operations on a fixed set of workers. Writes for a
// single index serialize on the index writer lock; the pool bounds how
// many operations run at once and keeps slow writes off request
// goroutines.
type Pool struct {
	queue  chan queued
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts a pool with the given number of workers and queue depth.
func NewPool(workers, queueDepth int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueDepth <= 0 {
		queueDepth = 64
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		queue:  make(chan queued, queueDepth),
		logger: logger,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Submit enqueues an operation and returns its task handle. Fails fast
// when the queue is full or the pool is shut down.
func (p *Pool) Submit(name string, op Op) (*Task, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	task := &Task{
		ID:     uuid.NewString(),
		Name:   name,
		result: make(chan Result, 1),
	}

	select {
	case p.queue <- queued{task: task, op: op}:
		p.mu.Unlock()
		return task, nil
	default:
		p.mu.Unlock()
		return nil, ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for in-flight tasks, up to the
// context deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for q := range p.queue {
		start := time.Now()
		value, err := q.op(context.Background())
		q.task.result <- Result{Value: value, Err: err}
		close(q.task.result)

		if err != nil {
			p.logger.Warn("task failed",
				"worker", id,
				"task", q.task.ID,
				"op", q.task.Name,
				"error", err,
			)
			continue
		}
		p.logger.Debug("task done",
			"worker", id,
			"task", q.task.ID,
			"op", q.task.Name,
			"took_ms", time.Since(start).Milliseconds(),
		)
	}
}
