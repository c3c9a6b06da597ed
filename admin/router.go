// Package admin exposes a read-only HTTP view of running buses.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seb7887/evbus/eventbus"
	"go.uber.org/zap"
)

type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

type BusView struct {
	Name  string              `json:"name"`
	Types []eventbus.TypeInfo `json:"types"`
}

type routerConfig struct {
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	routes   []Route
}

type Option func(*routerConfig)

// WithGatherer serves the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *routerConfig) {
		c.gatherer = g
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *routerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRoutes adds extra routes next to the built-in ones.
func WithRoutes(routes ...Route) Option {
	return func(c *routerConfig) {
		c.routes = append(c.routes, routes...)
	}
}

func SetupRouter(routes []Route, middlewares ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()

	for _, m := range middlewares {
		router.Use(m)
	}

	for _, route := range routes {
		router.Handle(route.Method, route.Path, route.Handler)
	}

	return router
}

// NewRouter serves /healthz, /buses and /buses/:name for the given buses.
func NewRouter(buses []*eventbus.Bus, opts ...Option) *gin.Engine {
	cfg := &routerConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	byName := make(map[string]*eventbus.Bus, len(buses))
	for _, b := range buses {
		byName[b.Name()] = b
	}

	routes := []Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: health},
		{Method: http.MethodGet, Path: "/buses", Handler: listBuses(buses)},
		{Method: http.MethodGet, Path: "/buses/:name", Handler: getBus(byName)},
	}
	if cfg.gatherer != nil {
		routes = append(routes, Route{
			Method:  http.MethodGet,
			Path:    "/metrics",
			Handler: gin.WrapH(promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{})),
		})
	}
	routes = append(routes, cfg.routes...)

	return SetupRouter(routes,
		gin.Recovery(),
		RequestIDMiddleware(),
		AccessLogMiddleware(cfg.logger),
		ErrorFormatterMiddleware(),
	)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"health": "ok"})
}

func listBuses(buses []*eventbus.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		views := make([]BusView, 0, len(buses))
		for _, b := range buses {
			views = append(views, BusView{Name: b.Name(), Types: b.Types()})
		}
		c.JSON(http.StatusOK, views)
	}
}

func getBus(byName map[string]*eventbus.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := byName[c.Param("name")]
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, BusView{Name: b.Name(), Types: b.Types()})
	}
}
