package app

import (
	"github.com/yungbote/constella-backend/internal/data/aggregates"
	"github.com/yungbote/constella-backend/internal/modules/knowledge"
	"github.com/yungbote/constella-backend/internal/observability"
	"github.com/yungbote/constella-backend/internal/platform/logger"
	"github.com/yungbote/constella-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Generator  services.ContentGenerator
	Limiter    services.GenerationLimiter
	Resolver   services.TopicResolver
	Discovery  services.DiscoveryService
	Knowledge  services.KnowledgeService
	Translator services.NameTranslator
	Topic      services.TopicService
	StarMap    services.StarMapService
	Chat       services.ChatService
	Wiki       services.WikiService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, repos Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	prompts := services.CurrentPrompts(log)
	generator := services.NewContentGenerator(log, clients.OpenAI, prompts, metrics, services.BreakerConfigFromEnv())
	limiter := services.NewGenerationLimiter(log, clients.Redis, metrics, cfg.GenerationLimitPerMinute)
	resolver := services.NewTopicResolver(log, repos.Topic, repos.Alias, repos.Article)
	writeDeps := aggregates.BaseDeps{
		DB:    clients.DB(),
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	discovery := services.NewDiscoveryService(log, repos.User, repos.Discovery, aggregates.NewWriter(writeDeps))
	dualTx := aggregates.NewDualTxRunner(writeDeps, clients.Graph)

	deps := services.KnowledgeDeps{
		Log:       log,
		Resolver:  resolver,
		Generator: generator,
		Limiter:   limiter,
		Discovery: discovery,
		DualTx:    dualTx,
		Metrics:   metrics,
		Policy:    knowledge.StalenessPolicy{FreshnessMonths: cfg.FreshnessMonths},
		Topics:    repos.Topic,
		Articles:  repos.Article,
		Aliases:   repos.Alias,
		Tags:      repos.Tag,
	}
	knowledgeService := services.NewKnowledgeService(deps)
	translator := services.NewNameTranslator(log, generator, prompts)

	return Services{
		Auth:       services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer),
		Generator:  generator,
		Limiter:    limiter,
		Resolver:   resolver,
		Discovery:  discovery,
		Knowledge:  knowledgeService,
		Translator: translator,
		Topic:      services.NewTopicService(log, repos.Topic, repos.Article, repos.Tag, discovery, knowledgeService),
		StarMap:    services.NewStarMapService(log, discovery, clients.Graph, translator),
		Chat:       services.NewChatService(log, repos.User, repos.ChatMessage, knowledgeService),
		Wiki:       services.NewWikiService(deps),
	}
}
