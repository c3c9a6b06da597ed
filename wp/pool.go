package wp

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
)

var ErrPoolStopped = errors.New("worker pool stopped")

// Pool runs tasks on a fixed set of workers. Tasks submitted with the same
// key always land on the same worker and run in submission order.
type Pool struct {
	mu         sync.RWMutex
	stopped    bool
	maxWorkers int
	taskQueues []chan func()
	wg         sync.WaitGroup
}

func NewPool(maxWorkers int, queueBuffer int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueBuffer < 1 {
		queueBuffer = 1
	}

	p := &Pool{
		maxWorkers: maxWorkers,
		taskQueues: make([]chan func(), maxWorkers),
	}

	for i := 0; i < maxWorkers; i++ {
		p.taskQueues[i] = make(chan func(), queueBuffer)
		p.wg.Add(1)
		go p.startWorker(p.taskQueues[i])
	}

	return p
}

func (p *Pool) startWorker(queue chan func()) {
	defer p.wg.Done()
	for task := range queue {
		task()
	}
}

// Submit queues task on the worker owning key. It blocks while that worker's
// queue is full, until ctx is done. A task must not submit to its own key
// with a context that never ends, or the worker can block on itself.
func (p *Pool) Submit(ctx context.Context, key string, task func()) error {
	if task == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	idx := fnv1a.HashString64(key) % uint64(p.maxWorkers)
	select {
	case p.taskQueues[idx] <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.maxWorkers
}

// Stop rejects new tasks, runs the queued ones and waits for the workers to
// exit. It must not be called from a task.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, q := range p.taskQueues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
