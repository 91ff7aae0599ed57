package client

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/opsdesk/sessionkit/config"
	"github.com/opsdesk/sessionkit/credentials"
	"github.com/opsdesk/sessionkit/observe"
)

// FromConfig builds a Client from loaded configuration: it constructs the
// selected credential store backend and, when any telemetry subsystem is
// enabled, an Observer. The returned shutdown function flushes telemetry;
// it is non-nil even when telemetry is disabled.
func FromConfig(ctx context.Context, cfg *config.Config) (*Client, func(context.Context) error, error) {
	store, err := storeFromConfig(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	var observer observe.Observer
	shutdown := func(context.Context) error { return nil }
	o := cfg.Observability
	if o.TracingEnabled || o.MetricsEnabled || o.LogLevel != "" {
		observer, err = observe.NewObserver(ctx, observe.Config{
			ServiceName: o.ServiceName,
			Tracing: observe.TracingConfig{
				Enabled:   o.TracingEnabled,
				Exporter:  o.TracingExporter,
				SamplePct: o.SamplePct,
			},
			Metrics: observe.MetricsConfig{
				Enabled:  o.MetricsEnabled,
				Exporter: o.MetricsExporter,
			},
			Logging: observe.LoggingConfig{
				Enabled: o.LogLevel != "",
				Level:   o.LogLevel,
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("client: create observer: %w", err)
		}
		shutdown = observer.Shutdown
	}

	c, err := New(Config{
		BaseURL:     cfg.BaseURL,
		RefreshPath: cfg.RefreshPath,
		Timeout:     cfg.RequestTimeout,
		Store:       store,
		Observer:    observer,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, shutdown, nil
}

func storeFromConfig(cfg config.StorageConfig) (credentials.Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return credentials.NewMemoryStore(), nil
	case "file":
		return credentials.NewFileStore(cfg.Path), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return credentials.NewRedisStore(credentials.RedisConfig{
			Client: rdb,
			Key:    cfg.Redis.Key,
			TTL:    cfg.Redis.TTL,
		}), nil
	default:
		return nil, fmt.Errorf("client: unknown storage backend %q", cfg.Backend)
	}
}
