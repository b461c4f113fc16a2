package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/repos"
	types "github.com/yungbote/constella-backend/internal/domain"
	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/modules/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

// MissingArticlePlaceholder is served when lazy generation produced nothing.
const MissingArticlePlaceholder = "Data corrupted. Translation failed."

type TopicLookup struct {
	ID       uuid.UUID
	Name     string
	Language string
}

type TopicView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []string  `json:"tags"`
}

type TopicService interface {
	// GetTopic returns a topic the user has discovered, generating the
	// article for the requested language on first access.
	GetTopic(ctx context.Context, userID uuid.UUID, in TopicLookup) (*TopicView, error)
}

type topicService struct {
	log       *logger.Logger
	topics    repos.TopicRepo
	articles  repos.ArticleRepo
	tags      repos.TagRepo
	discovery DiscoveryService
	knowledge KnowledgeService
	now       func() time.Time
}

func NewTopicService(
	baseLog *logger.Logger,
	topicRepo repos.TopicRepo,
	articleRepo repos.ArticleRepo,
	tagRepo repos.TagRepo,
	discovery DiscoveryService,
	knowledgeService KnowledgeService,
) TopicService {
	return &topicService{
		log:       baseLog.With("service", "TopicService"),
		topics:    topicRepo,
		articles:  articleRepo,
		tags:      tagRepo,
		discovery: discovery,
		knowledge: knowledgeService,
		now:       time.Now,
	}
}

func (s *topicService) GetTopic(ctx context.Context, userID uuid.UUID, in TopicLookup) (*TopicView, error) {
	language := normalizeLanguage(in.Language)
	dbc := dbctx.Context{Ctx: ctx}

	topic, err := s.lookup(dbc, in)
	if err != nil {
		return nil, err
	}

	ok, err := s.discovery.IsDiscovered(ctx, userID, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("check discovery: %w", err)
	}
	if !ok {
		return nil, domainknowledge.ErrTopicUndiscovered
	}

	article, err := s.articles.GetByTopicLanguage(dbc, topic.ID, language)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil || strings.TrimSpace(article.Content) == "" {
		if _, err := s.knowledge.ResolveOrSynthesize(ctx, userID, topic.Name, language); err != nil {
			return nil, err
		}
		article, err = s.articles.GetByTopicLanguage(dbc, topic.ID, language)
		if err != nil {
			return nil, fmt.Errorf("reload article: %w", err)
		}
	}

	tags, err := s.tags.ListByTopic(dbc, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	view := &TopicView{
		ID:        topic.ID,
		Name:      topic.Name,
		Content:   MissingArticlePlaceholder,
		Language:  language,
		UpdatedAt: s.now().UTC(),
		Tags:      make([]string, 0, len(tags)),
	}
	for _, t := range tags {
		view.Tags = append(view.Tags, t.Name)
	}
	if article != nil {
		view.Title = article.Title
		view.Content = article.Content
		view.Language = article.Language
		view.UpdatedAt = article.UpdatedAt
	}
	return view, nil
}

func (s *topicService) lookup(dbc dbctx.Context, in TopicLookup) (*types.Topic, error) {
	var (
		topic *types.Topic
		err   error
	)
	switch {
	case in.ID != uuid.Nil:
		topic, err = s.topics.GetByID(dbc, in.ID)
	case strings.TrimSpace(in.Name) != "":
		topic, err = s.topics.GetByName(dbc, knowledge.CanonicalName(in.Name))
	default:
		return nil, fmt.Errorf("%w: topic id or name is required", domainknowledge.ErrInvalidQuery)
	}
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	if topic == nil {
		return nil, domainknowledge.ErrTopicNotFound
	}
	return topic, nil
}
