package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/subscriberhub/internal/cache"
	"github.com/geocoder89/subscriberhub/internal/config"
	"github.com/geocoder89/subscriberhub/internal/db"
	httpx "github.com/geocoder89/subscriberhub/internal/http"
	"github.com/geocoder89/subscriberhub/internal/http/handlers"
	"github.com/geocoder89/subscriberhub/internal/observability"
	"github.com/geocoder89/subscriberhub/internal/repo/cached"
	"github.com/geocoder89/subscriberhub/internal/repo/memory"
	"github.com/geocoder89/subscriberhub/internal/repo/postgres"
	"github.com/geocoder89/subscriberhub/internal/repo/sqlite"
	"github.com/geocoder89/subscriberhub/internal/security"
	"github.com/geocoder89/subscriberhub/internal/service"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// store is what every storage driver hands back to main.
type store interface {
	service.SubscriberRepository
	handlers.Pinger
}

func main() {
	// a missing .env is fine; real deployments use the environment
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// tracing is opt-in
	serviceName := ""
	if cfg.OTelEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.OTelServiceName, cfg.Env, cfg.OTelEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			c, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(c)
		}()
		serviceName = cfg.OTelServiceName
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	repo, closeRepo, err := openStore(ctx, cfg, prom, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	ready := map[string]handlers.Pinger{"storage": repo}

	var cacheStore cache.Store = cache.NewMemory(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		defer rc.Close()

		cacheStore = rc
		ready["cache"] = rc
	}

	svc := service.NewSubscriberService(
		cached.NewSubscribersRepo(repo, cacheStore, log, cached.WithProm(prom)),
		security.NewBcryptHasher(),
		log,
	)

	var shuttingDown atomic.Bool

	router := httpx.NewRouter(httpx.RouterDeps{
		Env:                cfg.Env,
		Log:                log,
		Subscribers:        svc,
		Ready:              ready,
		ShuttingDown:       shuttingDown.Load,
		Prom:               prom,
		Gatherer:           reg,
		ServiceName:        serviceName,
		QuietRequests:      cfg.IsTest(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	log.Info("server shutting down")
	shuttingDown.Store(true)

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return nil
	}

	log.Info("shutdown complete")
	return nil
}

// openStore picks the subscriber store for cfg.StorageDriver and creates the
// table when DB_AUTO_CREATE is on. The returned func releases connections.
func openStore(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (store, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.NewSubscribersRepo(), func() {}, nil

	case config.DriverSQLite:
		gdb, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		repo := sqlite.NewSubscribersRepo(gdb, prom)

		if cfg.DBAutoCreate {
			if err := repo.EnsureSchema(ctx); err != nil {
				_ = repo.Close()
				return nil, nil, fmt.Errorf("create sqlite schema: %w", err)
			}
		}

		log.Info("sqlite storage ready", "path", cfg.SQLitePath)
		return repo, func() { _ = repo.Close() }, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSubscribersRepo(pool, prom)

		if cfg.DBAutoCreate {
			if err := repo.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("create postgres schema: %w", err)
			}
		}

		log.Info("postgres storage ready")
		return repo, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
