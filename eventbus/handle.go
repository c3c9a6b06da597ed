package eventbus

import "reflect"

// Handle identifies a single registration made with Subscribe.
// The zero value identifies nothing and is safe to pass to Unsubscribe.
type Handle struct {
	bus *Bus
	key reflect.Type
	id  uint64
}

// Valid reports whether the handle was issued by a successful Subscribe.
// A valid handle stays valid after it is unsubscribed.
func (h Handle) Valid() bool {
	return h.id != 0
}

// Type returns the event type the handle was registered for.
func (h Handle) Type() reflect.Type {
	return h.key
}

// ID returns the per-bus sequence number of the registration.
func (h Handle) ID() uint64 {
	return h.id
}
