package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/seb7887/evbus/eventbus"
)

// MetricsCollector provides Prometheus metrics for event bus publishes.
type MetricsCollector struct {
	published       *prometheus.CounterVec
	interrupted     *prometheus.CounterVec
	handlerPanics   *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
}

// NewMetricsCollector creates the publish metrics under namespace.
// If registry is nil, uses the default Prometheus registry.
func NewMetricsCollector(registry prometheus.Registerer, namespace string) *MetricsCollector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &MetricsCollector{
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "eventbus_published_total",
				Help:      "Total number of published events",
			},
			[]string{"bus", "type"},
		),

		interrupted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "eventbus_interrupted_total",
				Help:      "Total number of publishes interrupted by a handler",
			},
			[]string{"bus", "type"},
		),

		handlerPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "eventbus_handler_panics_total",
				Help:      "Total number of publishes aborted by a panicking handler",
			},
			[]string{"bus", "type"},
		),

		publishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "eventbus_publish_duration_seconds",
				Help:      "Time spent dispatching a published event",
				Buckets: []float64{
					0.00001, // 10us
					0.0001,  // 100us
					0.001,   // 1ms
					0.01,    // 10ms
					0.1,     // 100ms
					1.0,     // 1s
				},
			},
			[]string{"bus", "type"},
		),
	}
}

// Middleware records the metrics of every publish on the named bus.
func (m *MetricsCollector) Middleware(bus string) eventbus.Middleware {
	return func(next eventbus.PublishFunc) eventbus.PublishFunc {
		return func(ctx context.Context, event any) bool {
			typ := eventbus.TypeName(event)
			m.published.WithLabelValues(bus, typ).Inc()

			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					m.handlerPanics.WithLabelValues(bus, typ).Inc()
					panic(r)
				}
			}()

			interrupted := next(ctx, event)

			m.publishDuration.WithLabelValues(bus, typ).Observe(time.Since(start).Seconds())
			if interrupted {
				m.interrupted.WithLabelValues(bus, typ).Inc()
			}
			return interrupted
		}
	}
}

// SubscriberCollector exports the current subscriber count per event type.
// Counts are read from the buses at scrape time.
type SubscriberCollector struct {
	desc  *prometheus.Desc
	buses []*eventbus.Bus
}

var _ prometheus.Collector = (*SubscriberCollector)(nil)

func NewSubscriberCollector(namespace string, buses ...*eventbus.Bus) *SubscriberCollector {
	return &SubscriberCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "eventbus_subscribers"),
			"Number of registered subscribers",
			[]string{"bus", "type"},
			nil,
		),
		buses: buses,
	}
}

func (c *SubscriberCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *SubscriberCollector) Collect(ch chan<- prometheus.Metric) {
	for _, b := range c.buses {
		for _, info := range b.Types() {
			ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue,
				float64(info.Subscribers), b.Name(), info.Name)
		}
	}
}
