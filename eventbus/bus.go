package eventbus

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/seb7887/evbus/idgen"
	"go.uber.org/zap"
)

// Handler receives events of type T. Returning true interrupts the dispatch.
type Handler[T any] func(event T) bool

// TypeInfo describes the subscribers registered for one event type.
type TypeInfo struct {
	Name        string `json:"name"`
	Subscribers int    `json:"subscribers"`
}

type subscription struct {
	id     uint64
	invoke func(event any) bool
	active atomic.Bool
}

// Bus is a registry of handlers keyed by event type.
// The registry is guarded internally and is never locked while a handler
// runs, so handlers may publish, subscribe and unsubscribe on the same bus.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	nodes  map[reflect.Type][]*subscription

	name        string
	logger      *zap.Logger
	middlewares []Middleware
	publish     PublishFunc
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		nodes:  make(map[reflect.Type][]*subscription),
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.name == "" {
		b.name = idgen.NewULID()
	}
	b.logger = b.logger.With(zap.String("bus", b.name))
	b.publish = Chain(b.middlewares, b.dispatch)

	return b
}

// Name returns the bus name given with WithName, or a generated ULID.
func (b *Bus) Name() string {
	return b.name
}

// Subscribe appends handler to the subscriber list of T and returns the
// handle of the new registration. Registering the same handler twice creates
// two independent registrations. A nil handler registers nothing and yields
// the zero Handle.
func Subscribe[T any](b *Bus, handler Handler[T]) Handle {
	if handler == nil {
		return Handle{}
	}
	sub := &subscription{
		invoke: func(event any) bool {
			return handler(event.(T))
		},
	}
	return b.add(KeyOf[T](), sub)
}

// UnsubscribeAll removes every handler registered for T.
func UnsubscribeAll[T any](b *Bus) {
	b.UnsubscribeType(KeyOf[T]())
}

// Count returns the number of handlers registered for T.
func Count[T any](b *Bus) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.nodes[KeyOf[T]()])
}

// Publish dispatches event to the handlers registered for its dynamic type
// and reports whether one of them interrupted the dispatch.
func (b *Bus) Publish(event any) bool {
	return b.PublishContext(context.Background(), event)
}

// PublishContext is Publish with a context made available to middleware.
func (b *Bus) PublishContext(ctx context.Context, event any) bool {
	if event == nil {
		return false
	}
	return b.publish(ctx, event)
}

// Unsubscribe removes the registration identified by h. Handles that were
// already removed, are zero, or belong to another bus are ignored.
func (b *Bus) Unsubscribe(h Handle) {
	if h.bus != b || h.id == 0 {
		return
	}

	b.mu.Lock()
	subs := b.nodes[h.key]
	idx := -1
	for i, s := range subs {
		if s.id == h.id {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return
	}

	subs[idx].active.Store(false)
	if len(subs) == 1 {
		delete(b.nodes, h.key)
	} else {
		// a running dispatch may still hold subs, so never write into it
		next := make([]*subscription, 0, len(subs)-1)
		next = append(next, subs[:idx]...)
		next = append(next, subs[idx+1:]...)
		b.nodes[h.key] = next
	}
	b.mu.Unlock()

	b.logger.Debug("unsubscribed", zap.Stringer("type", h.key), zap.Uint64("id", h.id))
}

// UnsubscribeType removes every handler registered for the event type t.
func (b *Bus) UnsubscribeType(t reflect.Type) {
	if t == nil {
		return
	}

	b.mu.Lock()
	subs, ok := b.nodes[t]
	delete(b.nodes, t)
	b.mu.Unlock()

	if !ok {
		return
	}
	for _, s := range subs {
		s.active.Store(false)
	}
	b.logger.Debug("unsubscribed all", zap.Stringer("type", t), zap.Int("count", len(subs)))
}

// Len returns the number of registrations across all event types.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, subs := range b.nodes {
		n += len(subs)
	}
	return n
}

// Types lists the event types that currently have subscribers, sorted by name.
func (b *Bus) Types() []TypeInfo {
	b.mu.Lock()
	infos := make([]TypeInfo, 0, len(b.nodes))
	for t, subs := range b.nodes {
		infos = append(infos, TypeInfo{Name: t.String(), Subscribers: len(subs)})
	}
	b.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func (b *Bus) add(key reflect.Type, sub *subscription) Handle {
	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	sub.active.Store(true)
	// appending never touches the prefix a running dispatch is iterating over
	b.nodes[key] = append(b.nodes[key], sub)
	b.mu.Unlock()

	b.logger.Debug("subscribed", zap.Stringer("type", key), zap.Uint64("id", sub.id))

	return Handle{bus: b, key: key, id: sub.id}
}

func (b *Bus) dispatch(_ context.Context, event any) bool {
	key := reflect.TypeOf(event)

	b.mu.Lock()
	snapshot := b.nodes[key]
	b.mu.Unlock()

	for _, s := range snapshot {
		if !s.active.Load() {
			continue
		}
		if s.invoke(event) {
			return true
		}
	}
	return false
}
