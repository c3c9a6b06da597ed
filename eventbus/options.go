package eventbus

import "go.uber.org/zap"

type Option func(*Bus)

// WithName sets the name used in logs, metrics and the admin API.
func WithName(name string) Option {
	return func(b *Bus) {
		b.name = name
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMiddleware appends middlewares to the publish chain.
// The first middleware given is the outermost one.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(b *Bus) {
		b.middlewares = append(b.middlewares, middlewares...)
	}
}
