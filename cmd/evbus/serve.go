package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/seb7887/evbus/admin"
	"github.com/seb7887/evbus/async"
	"github.com/seb7887/evbus/config"
	"github.com/seb7887/evbus/eventbus"
	"github.com/seb7887/evbus/observability"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const _shutdownTimeout = 5 * time.Second

// Heartbeat is published by the demo publisher of the serve command.
type Heartbeat struct {
	Seq int
	At  time.Time
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		configName string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a bus with the admin API and an optional heartbeat publisher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, configName)
			if err != nil {
				return err
			}
			logger, err := cfg.Log.Build()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&configPath, "config-path", ".", "directory holding the config file")
	cmd.Flags().StringVar(&configName, "config-name", "evbus", "config file name without extension")

	return cmd
}

// run blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	registry := prometheus.NewRegistry()

	middlewares := []eventbus.Middleware{observability.Logging(logger)}
	if cfg.Metrics.Enabled {
		collector := observability.NewMetricsCollector(registry, cfg.Metrics.Namespace)
		middlewares = append(middlewares, collector.Middleware(cfg.Bus.Name))
	}
	if cfg.Tracing.Enabled {
		middlewares = append(middlewares, observability.NewTracer(nil).Middleware(cfg.Bus.Name))
	}

	bus := eventbus.New(
		eventbus.WithName(cfg.Bus.Name),
		eventbus.WithLogger(logger),
		eventbus.WithMiddleware(middlewares...),
	)
	if cfg.Metrics.Enabled {
		registry.MustRegister(observability.NewSubscriberCollector(cfg.Metrics.Namespace, bus))
	}

	dispatcher := async.New(bus,
		async.WithWorkers(cfg.Async.Workers),
		async.WithQueueSize(cfg.Async.QueueSize),
		async.WithLogger(logger),
	)
	defer dispatcher.Close()

	scope := bus.NewScope()
	defer scope.Close()
	eventbus.Within(scope, func(h Heartbeat) bool {
		logger.Info("heartbeat", zap.Int("seq", h.Seq), zap.Time("at", h.At))
		return false
	})

	if cfg.Admin.Enabled {
		opts := []admin.Option{admin.WithLogger(logger)}
		if cfg.Metrics.Enabled {
			opts = append(opts, admin.WithGatherer(registry))
		}
		srv := admin.NewServer(cfg.Admin.Addr, admin.NewRouter([]*eventbus.Bus{bus}, opts...), logger)
		if _, err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownTimeout)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	if cfg.Demo.Interval > 0 {
		go heartbeat(ctx, dispatcher, cfg.Demo.Interval, logger)
	}

	logger.Info("bus running", zap.String("bus", bus.Name()))
	<-ctx.Done()
	logger.Info("shutting down", zap.String("bus", bus.Name()))

	return nil
}

func heartbeat(ctx context.Context, d *async.Dispatcher, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for seq := 1; ; seq++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := d.Post(ctx, Heartbeat{Seq: seq, At: now}); err != nil {
				logger.Debug("heartbeat stopped", zap.Error(err))
				return
			}
		}
	}
}
