package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "EVBUS"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Bus     BusConfig     `mapstructure:"bus"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Async   AsyncConfig   `mapstructure:"async"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Demo    DemoConfig    `mapstructure:"demo"`
}

type BusConfig struct {
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type AsyncConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DemoConfig drives the heartbeat publisher of the serve command.
// A zero interval disables it.
type DemoConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Defaults returns the value of every key when neither the file nor the
// environment sets it.
func Defaults() map[string]any {
	return map[string]any{
		"bus.name":          "main",
		"log.level":         "info",
		"log.development":   false,
		"metrics.enabled":   true,
		"metrics.namespace": "evbus",
		"tracing.enabled":   false,
		"async.workers":     4,
		"async.queue_size":  64,
		"admin.enabled":     true,
		"admin.addr":        ":8080",
		"demo.interval":     "0s",
	}
}

// LoadConfig reads path/filename.yaml into T. A missing file is not an
// error: defaults and EVBUS_* environment variables still apply, e.g.
// EVBUS_ASYNC_QUEUE_SIZE for async.queue_size.
func LoadConfig[T any](path string, filename string, defaults map[string]any) (*T, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg T
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads and validates the evbus configuration.
func Load(path string, filename string) (*Config, error) {
	cfg, err := LoadConfig[Config](path, filename, Defaults())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Bus.Name == "" {
		err = multierr.Append(err, fmt.Errorf("%w: bus.name is required", ErrInvalidConfig))
	}
	if _, lerr := zapcore.ParseLevel(c.Log.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, lerr))
	}
	if c.Async.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: async.workers must be positive, got %d", ErrInvalidConfig, c.Async.Workers))
	}
	if c.Async.QueueSize < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: async.queue_size must be positive, got %d", ErrInvalidConfig, c.Async.QueueSize))
	}
	if c.Admin.Enabled && c.Admin.Addr == "" {
		err = multierr.Append(err, fmt.Errorf("%w: admin.addr is required when admin is enabled", ErrInvalidConfig))
	}
	if c.Demo.Interval < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: demo.interval must not be negative", ErrInvalidConfig))
	}

	return err
}

// Build creates the logger described by c.
func (c LogConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
