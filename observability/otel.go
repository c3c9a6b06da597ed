package observability

import (
	"context"
	"fmt"

	"github.com/seb7887/evbus/eventbus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/seb7887/evbus"
)

// Tracer creates one OpenTelemetry span per publish.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer with the given provider.
// If provider is nil, uses the global tracer provider.
func NewTracer(provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	return &Tracer{
		tracer: provider.Tracer(instrumentationName),
	}
}

// Middleware wraps every publish on the named bus in a span. The span is a
// child of any span found in the publish context.
func (t *Tracer) Middleware(bus string) eventbus.Middleware {
	return func(next eventbus.PublishFunc) eventbus.PublishFunc {
		return func(ctx context.Context, event any) bool {
			typ := eventbus.TypeName(event)
			ctx, span := t.tracer.Start(ctx, "publish "+typ,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String("eventbus.bus", bus),
					attribute.String("eventbus.type", typ),
				),
			)

			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("handler panic: %v", r)
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					span.End()
					panic(r)
				}
				span.End()
			}()

			interrupted := next(ctx, event)

			span.SetAttributes(attribute.Bool("eventbus.interrupted", interrupted))
			span.SetStatus(codes.Ok, "")
			return interrupted
		}
	}
}
