// Package eventbus implements an in-process, type-keyed publish/subscribe bus.
//
// Handlers are registered against the concrete type of the events they
// receive and are invoked synchronously, in registration order, by Publish.
// A handler returning true interrupts the dispatch: the handlers after it are
// not invoked for that publish call.
//
//	bus := eventbus.New()
//
//	h := eventbus.Subscribe(bus, func(p Ping) bool {
//	    fmt.Println("ping", p.Seq)
//	    return false
//	})
//	defer bus.Unsubscribe(h)
//
//	bus.Publish(Ping{Seq: 1})
//
// Dispatch keys on the exact dynamic type of the published value. A handler
// subscribed for an interface type never receives events, and a handler for
// T never receives *T.
//
// Every publish iterates over the subscriber list as it was when the call
// started. Handlers added while a dispatch is running are first invoked by
// the next publish; handlers removed while a dispatch is running are skipped
// if they have not been reached yet.
//
// A panicking handler is not recovered: the panic reaches the publisher and
// the remaining handlers of that publish are not invoked.
package eventbus
