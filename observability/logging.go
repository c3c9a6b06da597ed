package observability

import (
	"context"
	"time"

	"github.com/seb7887/evbus/eventbus"
	"go.uber.org/zap"
)

// Logging logs every publish at debug level and handler panics at error level.
func Logging(logger *zap.Logger) eventbus.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next eventbus.PublishFunc) eventbus.PublishFunc {
		return func(ctx context.Context, event any) bool {
			typ := eventbus.TypeName(event)
			start := time.Now()

			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panicked",
						zap.String("type", typ),
						zap.Any("panic", r),
						zap.Duration("duration", time.Since(start)),
					)
					panic(r)
				}
			}()

			interrupted := next(ctx, event)

			if ce := logger.Check(zap.DebugLevel, "published"); ce != nil {
				ce.Write(
					zap.String("type", typ),
					zap.Bool("interrupted", interrupted),
					zap.Duration("duration", time.Since(start)),
				)
			}
			return interrupted
		}
	}
}
