package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/modules/knowledge"
)

type WikiSubmission struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

type WikiSubmitResult struct {
	TopicID   uuid.UUID `json:"topic_id"`
	TopicName string    `json:"topic_name"`
}

type WikiService interface {
	// Submit stores hand-written content for a topic, replacing the article in
	// that language, and projects its [[links]] into the graph.
	Submit(ctx context.Context, userID uuid.UUID, in WikiSubmission) (*WikiSubmitResult, error)
}

type wikiService struct {
	k *knowledgeService
}

func NewWikiService(deps KnowledgeDeps) WikiService {
	k := newKnowledgeService(deps)
	k.log = deps.Log.With("service", "WikiService")
	return &wikiService{k: k}
}

func (s *wikiService) Submit(ctx context.Context, userID uuid.UUID, in WikiSubmission) (*WikiSubmitResult, error) {
	title := knowledge.DisplayName(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", domainknowledge.ErrInvalidQuery)
	}
	canonical := knowledge.CanonicalName(title)

	var aliases []string
	if title != canonical {
		aliases = []string{title}
	}
	topic, _, _, err := s.k.persist(ctx, "knowledge.wiki_submit", articleWrite{
		Canonical: canonical,
		Language:  normalizeLanguage(in.Language),
		Title:     title,
		Content:   knowledge.NormalizeMarkdownLinks(content),
		Aliases:   aliases,
	})
	if err != nil {
		return nil, err
	}
	s.k.recordDiscovery(ctx, userID, topic.ID)
	return &WikiSubmitResult{TopicID: topic.ID, TopicName: topic.Name}, nil
}
