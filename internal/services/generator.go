package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/observability"
	"github.com/yungbote/constella-backend/internal/platform/envutil"
	"github.com/yungbote/constella-backend/internal/platform/logger"
	"github.com/yungbote/constella-backend/internal/platform/openai"
)

// ContentGenerator produces raw, unvalidated generator text. Every failure it
// returns wraps knowledge.ErrGeneratorUnavailable.
type ContentGenerator interface {
	Generate(ctx context.Context, query, language string) (string, error)
	// CompleteJSON runs an arbitrary prompt through the same breaker.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func BreakerConfigFromEnv() BreakerConfig {
	return BreakerConfig{
		Name:         "content_generator",
		MaxRequests:  uint32(envutil.Int("GENERATOR_BREAKER_MAX_REQUESTS", 1)),
		Interval:     envutil.Seconds("GENERATOR_BREAKER_INTERVAL_SECONDS", 60*time.Second),
		Timeout:      envutil.Seconds("GENERATOR_BREAKER_TIMEOUT_SECONDS", 30*time.Second),
		MinRequests:  uint32(envutil.Int("GENERATOR_BREAKER_MIN_REQUESTS", 5)),
		FailureRatio: envutil.Float("GENERATOR_BREAKER_FAILURE_RATIO", 0.6),
	}
}

type contentGenerator struct {
	log     *logger.Logger
	client  openai.Client
	prompts *PromptSet
	metrics *observability.Metrics
	breaker *gobreaker.CircuitBreaker
}

func NewContentGenerator(log *logger.Logger, client openai.Client, prompts *PromptSet, metrics *observability.Metrics, cfg BreakerConfig) ContentGenerator {
	serviceLog := log.With("service", "ContentGenerator")
	if prompts == nil {
		prompts = CurrentPrompts(serviceLog)
	}
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = "content_generator"
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		cfg.FailureRatio = 0.6
	}
	minRequests, ratio := cfg.MinRequests, cfg.FailureRatio

	g := &contentGenerator{
		log:     serviceLog,
		client:  client,
		prompts: prompts,
		metrics: metrics,
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			serviceLog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.SetBreakerState(name, int(to))
		},
		// A caller hanging up says nothing about the provider.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return g
}

func (g *contentGenerator) Generate(ctx context.Context, query, language string) (string, error) {
	system, user := g.prompts.Synthesis.Render(map[string]string{
		"query":         strings.TrimSpace(query),
		"language":      language,
		"language_name": g.prompts.LanguageName(language),
	})
	return g.call(ctx, "synthesize", system, user)
}

func (g *contentGenerator) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return g.call(ctx, "complete_json", system, user)
}

func (g *contentGenerator) call(ctx context.Context, endpoint, system, user string) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: generator client not configured", domainknowledge.ErrGeneratorUnavailable)
	}
	ctx, span := observability.StartSpan(ctx, "generator."+endpoint)
	start := time.Now()

	out, err := g.breaker.Execute(func() (any, error) {
		return g.client.GenerateJSONText(ctx, system, user)
	})
	status := "ok"
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			status = "breaker_open"
		default:
			status = "error"
		}
	}
	g.metrics.ObserveLLMRequest(g.client.Model(), endpoint, status, time.Since(start))

	if err != nil {
		err = fmt.Errorf("%w: %w", domainknowledge.ErrGeneratorUnavailable, err)
		observability.EndSpan(span, err)
		g.log.Warn("generator call failed", "endpoint", endpoint, "status", status, "error", err)
		return "", err
	}
	observability.EndSpan(span, nil)
	text, _ := out.(string)
	return text, nil
}
