package app

import (
	"time"

	"github.com/yungbote/constella-backend/internal/modules/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/envutil"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	JWTSecretKey string
	JWTIssuer    string
	AuthDisabled bool
	AllowOrigins []string

	FreshnessMonths          int
	GenerationLimitPerMinute int
}

const defaultJWTSecret = "defaultsecret"

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		HTTPAddr:                 envutil.String("HTTP_ADDR", ":8080"),
		ShutdownTimeout:          envutil.Seconds("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		JWTSecretKey:             envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		JWTIssuer:                envutil.String("JWT_ISSUER", ""),
		AuthDisabled:             envutil.Bool("AUTH_DISABLED", false),
		AllowOrigins:             envutil.List("CORS_ALLOW_ORIGINS", nil),
		FreshnessMonths:          envutil.Int("KNOWLEDGE_FRESHNESS_MONTHS", knowledge.DefaultFreshnessMonths),
		GenerationLimitPerMinute: envutil.Int("GENERATION_RATE_LIMIT_PER_MINUTE", 0),
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	if cfg.FreshnessMonths <= 0 {
		log.Warn("KNOWLEDGE_FRESHNESS_MONTHS must be positive; using default", "default", knowledge.DefaultFreshnessMonths)
		cfg.FreshnessMonths = knowledge.DefaultFreshnessMonths
	}
	return cfg
}
