package observability

import (
	"testing"

	"github.com/seb7887/evbus/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging_Publish(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	bus := eventbus.New(eventbus.WithMiddleware(Logging(zap.New(core))))
	eventbus.Subscribe(bus, func(ping) bool { return true })

	bus.Publish(ping{})

	entries := logs.FilterMessage("published").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "observability.ping", fields["type"])
	assert.Equal(t, true, fields["interrupted"])
}

func TestLogging_Panic(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	bus := eventbus.New(eventbus.WithMiddleware(Logging(zap.New(core))))
	eventbus.Subscribe(bus, func(ping) bool { panic("boom") })

	assert.Panics(t, func() { bus.Publish(ping{}) })

	assert.Equal(t, 0, logs.FilterMessage("published").Len())
	entries := logs.FilterMessage("handler panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["panic"])
}

func TestLogging_NilLogger(t *testing.T) {
	bus := eventbus.New(eventbus.WithMiddleware(Logging(nil)))
	eventbus.Subscribe(bus, func(ping) bool { return false })

	assert.NotPanics(t, func() { bus.Publish(ping{}) })
}
