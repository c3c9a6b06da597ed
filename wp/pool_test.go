package wp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWorkerPool_BasicExecution(t *testing.T) {
	p := NewPool(3, 10)

	var (
		mu      sync.Mutex
		results []int
	)

	tasks := []struct {
		key  string
		exec func()
	}{
		{"task1", func() { mu.Lock(); results = append(results, 1); mu.Unlock() }},
		{"task2", func() { mu.Lock(); results = append(results, 2); mu.Unlock() }},
		{"task3", func() { mu.Lock(); results = append(results, 3); mu.Unlock() }},
	}

	for _, task := range tasks {
		if err := p.Submit(context.Background(), task.key, task.exec); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	p.Stop()

	if len(results) != 3 {
		t.Errorf("Wrong number of results: %d", len(results))
	}
}

func TestWorkerPool_SameKeyKeepsOrder(t *testing.T) {
	p := NewPool(4, 2)

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 50; i++ {
		_ = p.Submit(context.Background(), "same", func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	p.Stop()

	if len(order) != 50 {
		t.Fatalf("Wrong number of tasks: %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestWorkerPool_GracefullyShutdown(t *testing.T) {
	p := NewPool(3, 5)
	var (
		counter int
		mu      sync.Mutex
	)

	tasks := 10
	for i := 0; i < tasks; i++ {
		_ = p.Submit(context.Background(), "task", func() {
			mu.Lock()
			counter++
			mu.Unlock()
		})
	}

	p.Stop()

	if counter != tasks {
		t.Errorf("Wrong number of tasks: %d", counter)
	}
}

func TestWorkerPool_NoPanicOnNilTask(t *testing.T) {
	p := NewPool(2, 2)
	defer p.Stop()

	if err := p.Submit(context.Background(), "nil-task", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWorkerPool_NoSubmitAfterStop(t *testing.T) {
	p := NewPool(2, 2)
	p.Stop()
	p.Stop()

	err := p.Submit(context.Background(), "stopped-task", func() {})
	if !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}

func TestWorkerPool_SubmitHonorsContext(t *testing.T) {
	p := NewPool(1, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	_ = p.Submit(context.Background(), "k", func() { close(started); <-release })
	<-started
	_ = p.Submit(context.Background(), "k", func() {})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Submit(ctx, "k", func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	close(release)
	p.Stop()
}
