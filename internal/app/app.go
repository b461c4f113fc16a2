package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/constella-backend/internal/http"
	"github.com/yungbote/constella-backend/internal/observability"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Router   *gin.Engine
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	server       *http.Server
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelCfg := observability.OtelConfigFromEnv()
	otelShutdown := observability.InitOTel(ctx, log, otelCfg)
	metrics := observability.Init(log)

	clients, err := wireClients(ctx, log)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}
	if sqlDB, err := clients.DB().DB(); err == nil {
		metrics.RegisterDBStats(sqlDB, "constella")
	}

	reposet := wireRepos(clients.DB(), log)
	serviceset := wireServices(log, cfg, clients, reposet, metrics)
	handlerset := wireHandlers(log, clients, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset)
	server := wireServer(log, cfg, metrics, otelCfg.ServiceName, handlerset, middleware)

	return &App{
		Log:          log,
		Router:       server.Engine,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP on cfg.HTTPAddr until Shutdown.
func (a *App) Run() error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("listening", "addr", a.Cfg.HTTPAddr)
	return a.server.Run(a.Cfg.HTTPAddr)
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
