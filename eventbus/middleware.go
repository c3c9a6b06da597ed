package eventbus

import "context"

// PublishFunc performs a publish and reports whether the dispatch was
// interrupted. It is either the next middleware or the dispatch itself.
type PublishFunc func(ctx context.Context, event any) bool

// Middleware wraps a publish. A middleware can:
// - observe the event and the outcome of the dispatch
// - short-circuit by returning without calling next
// - watch for handler panics with a deferred recover, as long as it re-panics
type Middleware func(next PublishFunc) PublishFunc

// Chain builds a PublishFunc where middlewares[0] wraps middlewares[1], and so
// on, with final innermost.
func Chain(middlewares []Middleware, final PublishFunc) PublishFunc {
	publish := final
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		publish = middlewares[i](publish)
	}
	return publish
}
