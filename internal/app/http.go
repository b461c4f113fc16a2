package app

import (
	"context"

	"github.com/yungbote/constella-backend/internal/http"
	httpH "github.com/yungbote/constella-backend/internal/http/handlers"
	httpMW "github.com/yungbote/constella-backend/internal/http/middleware"
	"github.com/yungbote/constella-backend/internal/observability"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Chat   *httpH.ChatHandler
	Topic  *httpH.TopicHandler
	Graph  *httpH.GraphHandler
	Wiki   *httpH.WikiHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth, cfg.AuthDisabled),
	}
}

func wireHandlers(log *logger.Logger, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.HealthCheck{
		"db": func(ctx context.Context) error {
			sqlDB, err := clients.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Neo4j != nil {
		checks["graph"] = func(ctx context.Context) error {
			return clients.Neo4j.Driver.VerifyConnectivity(ctx)
		}
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}
	}
	return Handlers{
		Health: httpH.NewHealthHandler(checks),
		Chat:   httpH.NewChatHandler(services.Chat),
		Topic:  httpH.NewTopicHandler(services.Topic),
		Graph:  httpH.NewGraphHandler(services.StarMap, services.Discovery),
		Wiki:   httpH.NewWikiHandler(services.Wiki),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, serviceName string, handlers Handlers, middleware Middleware) *http.Server {
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = httpMW.AllowOriginsFromEnv()
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    serviceName,
		AllowOrigins:   origins,
		AuthMiddleware: middleware.Auth,
		HealthHandler:  handlers.Health,
		ChatHandler:    handlers.Chat,
		TopicHandler:   handlers.Topic,
		GraphHandler:   handlers.Graph,
		WikiHandler:    handlers.Wiki,
	})
}
