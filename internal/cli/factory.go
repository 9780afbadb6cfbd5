package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/internal/config"
	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/internal/metrics"
	"github.com/aretw0/ticketflow/pkg/adapters/file"
	"github.com/aretw0/ticketflow/pkg/adapters/memory"
	"github.com/aretw0/ticketflow/pkg/adapters/redis"
	"github.com/aretw0/ticketflow/pkg/adapters/sqlite"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime bundles the engine with the resources it was built from.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *ticketflow.Engine
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	closers []func() error
}

// Close releases the store connections.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// NewLogger builds the CLI logger from the log section of cfg.
// Logs go to Stderr so that Stdout stays free for program output.
func NewLogger(cfg *config.Config, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.NewWithWriter(os.Stderr, slog.LevelDebug, cfg.Log.Format == "json"), nil
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, cfg.Log.Format == "json"), nil
}

// NewRuntime wires the store selected by cfg, the trail catalog, metrics and
// the engine. Close must be called when done.
func NewRuntime(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	collector, err := metrics.New(rt.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	rt.Metrics = collector

	store, locker, closeStore, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeStore)

	opts := []ticketflow.Option{
		ticketflow.WithLogger(logger),
		ticketflow.WithStore(store),
		ticketflow.WithLifecycleHooks(collector.Hooks()),
		ticketflow.WithLifecycleHooks(createDebugHooks(logger)),
	}
	if locker != nil {
		opts = append(opts, ticketflow.WithLocker(locker))
	}
	c, err := LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		rt.Close()
		return nil, err
	}
	opts = append(opts, ticketflow.WithCatalog(c))

	eng, err := ticketflow.New(opts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = eng
	return rt, nil
}

// OpenStore returns the snapshot store configured by cfg, an optional
// distributed locker and a function releasing the store.
func OpenStore(cfg *config.Config) (ports.SnapshotStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		return memory.NewStore(), nil, noop, nil
	case config.BackendFile:
		return file.New(filepath.Join(cfg.Store.Dir, "sessions")), nil, noop, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(filepath.Join(cfg.Store.Dir, "sessions.db"))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil, store.Close, nil
	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Store.TTL),
		)
		if err := store.Client().Ping(context.Background()).Err(); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		var locker ports.DistributedLocker
		if cfg.Redis.Lock {
			locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
		return store, locker, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// createDebugHooks logs every transition at debug level.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "Step", "session_id", e.SessionID, "symbol", e.Symbol.Printable(), "from", e.From, "to", e.To, "accepted", e.Accepted)
		},
		OnRun: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "Run", "session_id", e.SessionID, "length", e.Length, "final", e.Final, "accepted", e.Accepted)
		},
		OnReset: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "Reset", "session_id", e.SessionID)
		},
	}
}
