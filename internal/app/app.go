package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/onboarding-backend/internal/data/db"
	"github.com/yungbote/onboarding-backend/internal/data/repos"
	apphttp "github.com/yungbote/onboarding-backend/internal/http"
	"github.com/yungbote/onboarding-backend/internal/observability"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

const serviceName = "onboarding-backend"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    repos.Set
	Services Services
	Server   *apphttp.Server

	metrics      *observability.Metrics
	otelShutdown func(context.Context) error
}

func newLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func New(ctx context.Context) (*App, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if clients.DB != nil {
		if err := db.AutoMigrateAll(clients.DB); err != nil {
			clients.Close(log)
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	reposet := wireRepos(clients.KV, log)

	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close(log)
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		metrics:      metrics,
		otelShutdown: shutdown,
	}, nil
}

// Run serves HTTP until ctx ends, with collectors and the metrics listener
// tied to the same lifetime.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.metrics.StartDBCollector(ctx, a.Log, a.Clients.DB)
	a.metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	a.metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)

	a.Log.Info("Starting HTTP server", "addr", a.Cfg.HTTPAddr, "kv_backend", a.Cfg.KVBackend)
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close(a.Log)
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate creates the kv table for the sql backend and exits. The redis
// backend needs no schema.
func Migrate(ctx context.Context) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := LoadConfig(log)
	if cfg.KVBackend == KVBackendRedis {
		log.Info("KV_BACKEND=redis; nothing to migrate")
		return nil
	}
	gdb, err := db.Open(log, cfg.DB)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.AutoMigrateAll(gdb.WithContext(ctx)); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.Info("Migration complete", "driver", cfg.DB.Driver)
	return nil
}
