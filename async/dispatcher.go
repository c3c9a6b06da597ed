// Package async publishes events on a bus from a pool of workers.
//
// Events of the same type are dispatched one at a time in the order they were
// posted. Events of different types may be dispatched concurrently.
package async

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/seb7887/evbus/eventbus"
	"github.com/seb7887/evbus/wp"
	"go.uber.org/zap"
)

const (
	_defaultWorkers   = 4
	_defaultQueueSize = 64
)

// Dispatcher queues events and publishes them on a bus from worker goroutines.
type Dispatcher struct {
	bus       *eventbus.Bus
	pool      *wp.Pool
	closed    atomic.Bool
	logger    *zap.Logger
	workers   int
	queueSize int
	onResult  func(event any, interrupted bool)
	onError   func(err error)
}

type Option func(*Dispatcher)

func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		d.workers = n
	}
}

// WithQueueSize sets the number of events each worker can hold before
// Post blocks.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		d.queueSize = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithResultHook registers fn to be called on the worker after every
// completed publish.
func WithResultHook(fn func(event any, interrupted bool)) Option {
	return func(d *Dispatcher) {
		d.onResult = fn
	}
}

// WithErrorHook registers fn to receive a *PanicError for every publish
// aborted by a handler panic.
func WithErrorHook(fn func(err error)) Option {
	return func(d *Dispatcher) {
		d.onError = fn
	}
}

func New(bus *eventbus.Bus, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		bus:       bus,
		logger:    zap.NewNop(),
		workers:   _defaultWorkers,
		queueSize: _defaultQueueSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.pool = wp.NewPool(d.workers, d.queueSize)
	d.logger = d.logger.With(zap.String("bus", bus.Name()))

	return d
}

// Post queues event for publishing. It blocks while the queue of the
// event's worker is full, until ctx is done. The context is also passed to
// the publish, so it should outlive the dispatch when it carries a deadline.
func (d *Dispatcher) Post(ctx context.Context, event any) error {
	if d.closed.Load() {
		return ErrDispatcherClosed
	}
	if event == nil {
		return nil
	}

	typ := eventbus.TypeName(event)
	err := d.pool.Submit(ctx, typ, func() {
		d.publish(ctx, typ, event)
	})
	if errors.Is(err, wp.ErrPoolStopped) {
		return ErrDispatcherClosed
	}
	return err
}

// Close publishes the events already queued and stops the workers.
// It must not be called from a handler run by this dispatcher.
func (d *Dispatcher) Close() {
	if d.closed.Swap(true) {
		return
	}
	d.pool.Stop()
}

func (d *Dispatcher) publish(ctx context.Context, typ string, event any) {
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Type: typ, Event: event, Value: r}
			d.logger.Error("async publish aborted", zap.String("type", typ), zap.Error(err))
			if d.onError != nil {
				d.onError(err)
			}
		}
	}()

	interrupted := d.bus.PublishContext(ctx, event)
	if d.onResult != nil {
		d.onResult(event, interrupted)
	}
}
