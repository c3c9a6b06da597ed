package eventbus

import "sync"

// Scope collects the registrations of one owner so they can be released
// together, typically when the owner becomes inactive.
type Scope struct {
	bus *Bus

	mu      sync.Mutex
	handles []Handle
	closed  bool
}

// NewScope returns an open scope bound to b.
func (b *Bus) NewScope() *Scope {
	return &Scope{bus: b}
}

// Within subscribes handler on the scope's bus and tracks the registration.
// It returns the zero Handle if the scope is closed.
func Within[T any](s *Scope, handler Handler[T]) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Handle{}
	}
	h := Subscribe(s.bus, handler)
	if h.Valid() {
		s.handles = append(s.handles, h)
	}
	return h
}

// Add tracks a handle obtained from Subscribe. Adding to a closed scope
// unsubscribes h right away and returns the zero Handle.
func (s *Scope) Add(h Handle) Handle {
	s.mu.Lock()
	if !s.closed {
		if h.Valid() {
			s.handles = append(s.handles, h)
		}
		s.mu.Unlock()
		return h
	}
	s.mu.Unlock()

	s.bus.Unsubscribe(h)
	return Handle{}
}

// Bus returns the bus the scope registers on.
func (s *Scope) Bus() *Bus {
	return s.bus
}

// Len returns the number of tracked registrations.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Close unsubscribes every tracked registration, most recent first.
// Calling Close more than once is a no-op.
func (s *Scope) Close() {
	s.mu.Lock()
	handles := s.handles
	s.handles = nil
	s.closed = true
	s.mu.Unlock()

	for i := len(handles) - 1; i >= 0; i-- {
		s.bus.Unsubscribe(handles[i])
	}
}
