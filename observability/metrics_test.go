package observability

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/seb7887/evbus/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{}

type pong struct{}

func TestMetricsCollector_RecordsPublishes(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollector(registry, "test")

	bus := eventbus.New(eventbus.WithName("main"), eventbus.WithMiddleware(collector.Middleware("main")))
	eventbus.Subscribe(bus, func(ping) bool { return false })
	eventbus.Subscribe(bus, func(pong) bool { return true })

	bus.Publish(ping{})
	bus.Publish(ping{})
	bus.Publish(pong{})

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.published.WithLabelValues("main", "observability.ping")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.published.WithLabelValues("main", "observability.pong")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.interrupted.WithLabelValues("main", "observability.ping")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.interrupted.WithLabelValues("main", "observability.pong")))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.publishDuration))
}

func TestMetricsCollector_CountsPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollector(registry, "test")

	bus := eventbus.New(eventbus.WithMiddleware(collector.Middleware("main")))
	eventbus.Subscribe(bus, func(ping) bool { panic("boom") })

	assert.PanicsWithValue(t, "boom", func() { bus.Publish(ping{}) })
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.handlerPanics.WithLabelValues("main", "observability.ping")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.published.WithLabelValues("main", "observability.ping")))
}

func TestSubscriberCollector(t *testing.T) {
	bus := eventbus.New(eventbus.WithName("ui"))
	eventbus.Subscribe(bus, func(ping) bool { return false })
	eventbus.Subscribe(bus, func(ping) bool { return false })
	h := eventbus.Subscribe(bus, func(pong) bool { return false })

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(NewSubscriberCollector("test", bus)))

	expected := `
# HELP test_eventbus_subscribers Number of registered subscribers
# TYPE test_eventbus_subscribers gauge
test_eventbus_subscribers{bus="ui",type="observability.ping"} 2
test_eventbus_subscribers{bus="ui",type="observability.pong"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_eventbus_subscribers"))

	bus.Unsubscribe(h)
	assert.Equal(t, 1, testutil.CollectAndCount(NewSubscriberCollector("test", bus)))
}
