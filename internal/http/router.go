package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/constella-backend/internal/http/handlers"
	httpMW "github.com/yungbote/constella-backend/internal/http/middleware"
	"github.com/yungbote/constella-backend/internal/observability"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowOrigins   []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler *httpH.HealthHandler
	ChatHandler   *httpH.ChatHandler
	TopicHandler  *httpH.TopicHandler
	GraphHandler  *httpH.GraphHandler
	WikiHandler   *httpH.WikiHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Chat
		if cfg.ChatHandler != nil {
			protected.POST("/chat", cfg.ChatHandler.Send)
			protected.GET("/chat", cfg.ChatHandler.History)
		}

		// Topics
		if cfg.TopicHandler != nil {
			protected.GET("/topics", cfg.TopicHandler.GetTopic)
		}

		// Star map + ship log
		if cfg.GraphHandler != nil {
			protected.GET("/graph", cfg.GraphHandler.StarMap)
			protected.GET("/ship-log", cfg.GraphHandler.ShipLog)
		}

		// Wiki
		if cfg.WikiHandler != nil {
			protected.POST("/wiki", cfg.WikiHandler.Submit)
		}
	}

	return r
}
