package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/constella-backend/internal/data/repos"
	types "github.com/yungbote/constella-backend/internal/domain"
	"github.com/yungbote/constella-backend/internal/modules/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

const DefaultLanguage = "en"

// Resolution is the outcome of a lookup. Topic is nil on a miss; Article is
// nil when the topic has no article in the requested language yet.
type Resolution struct {
	Topic    *types.Topic
	Article  *types.Article
	Language string
	ViaAlias bool
}

func (r *Resolution) Found() bool { return r != nil && r.Topic != nil }

type TopicResolver interface {
	Resolve(ctx context.Context, query, language string) (*Resolution, error)
}

type topicResolver struct {
	log      *logger.Logger
	topics   repos.TopicRepo
	aliases  repos.AliasRepo
	articles repos.ArticleRepo
}

func NewTopicResolver(log *logger.Logger, topics repos.TopicRepo, aliases repos.AliasRepo, articles repos.ArticleRepo) TopicResolver {
	return &topicResolver{
		log:      log.With("service", "TopicResolver"),
		topics:   topics,
		aliases:  aliases,
		articles: articles,
	}
}

// Resolve tries the canonical name first and then the alias table with the
// trimmed, case-preserved query. It never writes.
func (s *topicResolver) Resolve(ctx context.Context, query, language string) (*Resolution, error) {
	language = normalizeLanguage(language)
	res := &Resolution{Language: language}
	dbc := dbctx.Context{Ctx: ctx}

	canonical := knowledge.CanonicalName(query)
	if canonical == "" {
		return res, nil
	}
	topic, err := s.topics.GetByName(dbc, canonical)
	if err != nil {
		return nil, fmt.Errorf("resolve topic %q: %w", canonical, err)
	}
	if topic == nil {
		topic, err = s.aliases.GetTopicByAlias(dbc, knowledge.DisplayName(query))
		if err != nil {
			return nil, fmt.Errorf("resolve alias %q: %w", query, err)
		}
		res.ViaAlias = topic != nil
	}
	if topic == nil {
		return res, nil
	}
	res.Topic = topic

	article, err := s.articles.GetByTopicLanguage(dbc, topic.ID, language)
	if err != nil {
		return nil, fmt.Errorf("load article %s/%s: %w", topic.Name, language, err)
	}
	res.Article = article
	return res, nil
}

func normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return DefaultLanguage
	}
	return language
}
