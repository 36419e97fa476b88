package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Pool Tests ---

func TestPool_SubmitAndWait(t *testing.T) {
	p := NewPool(2, 8, discardLogger())
	defer p.Shutdown(context.Background())

	task, err := p.Submit("add", func(context.Context) (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.ID == "" {
		t.Error("task must get an ID")
	}

	value, err := task.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if value.(int) != 42 {
		t.Errorf("value = %v, want 42", value)
	}
}

func TestPool_PropagatesError(t *testing.T) {
	p := NewPool(1, 8, discardLogger())
	defer p.Shutdown(context.Background())

	opErr := errors.New("op failed")
	task, err := p.Submit("fail", func(context.Context) (any, error) {
		return nil, opErr
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := task.Wait(context.Background()); !errors.Is(err, opErr) {
		t.Errorf("err = %v, want the op error", err)
	}
}

func TestPool_ConcurrentSubmits(t *testing.T) {
	p := NewPool(4, 128, discardLogger())
	defer p.Shutdown(context.Background())

	var executed atomic.Int64
	var wg sync.WaitGroup
	const n = 50

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := p.Submit("count", func(context.Context) (any, error) {
				executed.Add(1)
				return nil, nil
			})
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := task.Wait(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if executed.Load() != n {
		t.Errorf("executed %d tasks, want %d", executed.Load(), n)
	}
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(1, 1, discardLogger())
	defer p.Shutdown(context.Background())

	release := make(chan struct{})
	blocker, err := p.Submit("block", func(context.Context) (any, error) {
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Fill the queue behind the blocked worker, then expect rejection.
	// The worker may not have picked up the blocker yet, so allow one
	// extra slot before asserting.
	sawFull := false
	for i := 0; i < 3; i++ {
		if _, err := p.Submit("fill", func(context.Context) (any, error) { return nil, nil }); errors.Is(err, ErrQueueFull) {
			sawFull = true
			break
		}
	}
	if !sawFull {
		t.Error("expected ErrQueueFull once the queue is saturated")
	}

	close(release)
	if _, err := blocker.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestPool_Shutdown(t *testing.T) {
	p := NewPool(2, 8, discardLogger())

	task, err := p.Submit("last", func(context.Context) (any, error) {
		time.Sleep(10 * time.Millisecond)
		return "done", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The in-flight task completed before shutdown returned.
	value, err := task.Wait(context.Background())
	if err != nil || value.(string) != "done" {
		t.Errorf("task after shutdown = %v, %v", value, err)
	}

	if _, err := p.Submit("late", func(context.Context) (any, error) { return nil, nil }); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("err = %v, want ErrPoolClosed", err)
	}

	// Shutdown is idempotent.
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestTask_WaitRespectsContext(t *testing.T) {
	p := NewPool(1, 8, discardLogger())
	defer p.Shutdown(context.Background())

	release := make(chan struct{})
	defer close(release)
	task, err := p.Submit("slow", func(context.Context) (any, error) {
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := task.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}
