package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/observability"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

// GenerationLimiter caps generator calls per user.
type GenerationLimiter interface {
	// Allow returns knowledge.ErrGenerationRateLimited when the user is over budget.
	Allow(ctx context.Context, userID uuid.UUID) error
}

type redisGenerationLimiter struct {
	log     *logger.Logger
	rdb     *goredis.Client
	metrics *observability.Metrics
	limit   int64
	window  time.Duration
	now     func() time.Time
}

// NewGenerationLimiter uses a fixed one-minute window per user. A nil client or
// a non-positive limit disables limiting. Redis errors let the call through.
func NewGenerationLimiter(log *logger.Logger, rdb *goredis.Client, metrics *observability.Metrics, perMinute int) GenerationLimiter {
	return &redisGenerationLimiter{
		log:     log.With("service", "GenerationLimiter"),
		rdb:     rdb,
		metrics: metrics,
		limit:   int64(perMinute),
		window:  time.Minute,
		now:     time.Now,
	}
}

func (l *redisGenerationLimiter) Allow(ctx context.Context, userID uuid.UUID) error {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return nil
	}
	bucket := l.now().UTC().Truncate(l.window).Unix()
	key := fmt.Sprintf("constella:genlimit:%s:%d", userID.String(), bucket)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window+5*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn("rate limiter unavailable; allowing", "error", err)
		return nil
	}
	if incr.Val() > l.limit {
		l.metrics.IncRateLimited()
		return domainknowledge.ErrGenerationRateLimited
	}
	return nil
}
