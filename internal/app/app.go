// Package app assembles the sync daemon from its configuration and runs it
// until the run context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MKhiriev/go-list-sync/internal/adapter"
	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/crypto"
	"github.com/MKhiriev/go-list-sync/internal/handler"
	"github.com/MKhiriev/go-list-sync/internal/handler/http"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/metrics"
	"github.com/MKhiriev/go-list-sync/internal/redis"
	"github.com/MKhiriev/go-list-sync/internal/server"
	"github.com/MKhiriev/go-list-sync/internal/service"
	"github.com/MKhiriev/go-list-sync/internal/store"
	"github.com/MKhiriev/go-list-sync/internal/workers"
	"github.com/MKhiriev/go-list-sync/models"
)

const (
	// healthRefreshInterval is how often the gRPC health status is refreshed.
	healthRefreshInterval = 30 * time.Second

	// drainTimeout bounds the wait for in-flight cycles on shutdown.
	drainTimeout = time.Minute

	defaultVersion = "dev"
)

// App is a fully wired sync daemon.
type App struct {
	storages *store.Storages
	redis    *redis.Client
	services *service.Services
	server   server.Server
	workers  *workers.Workers

	logger *logger.Logger
}

// New opens every dependency named by cfg. Resources opened before a failure
// are released.
func New(ctx context.Context, cfg *config.StructuredConfig, build models.AppBuildInfo, log *logger.Logger) (_ *App, err error) {
	if cfg.Server.HTTPAddress != "" && cfg.App.TokenSignKey == "" {
		return nil, fmt.Errorf("%w: token sign key is empty", config.ErrConfig)
	}
	if cfg.App.Version == "" {
		cfg.App.Version = build.Version
	}
	if cfg.App.Version == "" {
		cfg.App.Version = defaultVersion
	}

	a := &App{logger: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	vault, err := crypto.NewVault(cfg.Vault.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("error opening vault: %w", err)
	}
	log.Info().Int("key_version", vault.CurrentVersion()).Ints("key_versions", vault.Versions()).Msg("vault opened")

	a.storages, err = store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("error creating storages: %w", err)
	}

	source, err := adapter.NewHTTPListSource(cfg.Adapter, log)
	if err != nil {
		return nil, fmt.Errorf("error creating list source: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}

	opts := []service.ManagerOption{service.WithCycleObserver(collector)}
	if cfg.Redis.Address != "" {
		a.redis, err = redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithGroupLocker(redis.NewGroupLock(a.redis, cfg.Redis.LockTTL, log)))
		if cfg.Adapter.RateLimit > 0 {
			opts = append(opts, service.WithAccountLimiter(redis.NewRateLimiter(a.redis, cfg.Adapter.RateLimit, cfg.Adapter.RateWindow)))
		}
		log.Info().Str("address", cfg.Redis.Address).Int("rate_limit", cfg.Adapter.RateLimit).Msg("redis coordination enabled")
	}

	a.services, err = service.NewServices(a.storages, vault, source, *cfg, log, build, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating services: %w", err)
	}

	handlers, err := handler.NewHandlers(a.services, cfg.Server, log, http.WithMetricsHandler(metrics.Handler(registry)))
	if err != nil {
		return nil, fmt.Errorf("error creating handlers: %w", err)
	}

	a.server, err = server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		return nil, fmt.Errorf("error creating server: %w", err)
	}

	a.workers = workers.New(workers.NewSchedulerWorker(a.services.Scheduler, cfg.Sync.PollInterval, log))
	if handlers.GRPC != nil {
		a.workers.Add(workers.NewHealthWorker(handlers.GRPC, healthRefreshInterval, log))
	}

	return a, nil
}

// Run serves until ctx is cancelled or a transport fails. It then stops the
// transports and workers, waits for in-flight cycles and closes storage.
func (a *App) Run(ctx context.Context) error {
	a.workers.Start(ctx)
	runErr := a.server.RunServer(ctx)

	a.workers.Stop()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := a.services.SyncManager.Shutdown(drainCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	a.services.Scheduler.Wait()

	if err := a.close(); err != nil {
		runErr = errors.Join(runErr, err)
	}

	a.logger.Info().Msg("sync daemon stopped")
	return runErr
}

func (a *App) close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing redis: %w", err))
		}
	}
	if a.storages != nil {
		if err := a.storages.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing storages: %w", err))
		}
	}
	return errors.Join(errs...)
}
