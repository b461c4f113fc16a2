package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/repos/testutil"
	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
)

func newTopicService(h *harness) TopicService {
	return NewTopicService(h.log, h.topics, h.articles, h.tags, h.discovery, h.knowledge)
}

func TestGetTopic_RequiresDiscovery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := testutil.SeedTopic(t, ctx, h.db, "comet "+suffix())
	testutil.SeedArticle(t, ctx, h.db, topic.ID, "en", "icy body", time.Now().UTC())
	svc := newTopicService(h)

	_, err := svc.GetTopic(ctx, uuid.New(), TopicLookup{ID: topic.ID, Language: "en"})
	if !errors.Is(err, domainknowledge.ErrTopicUndiscovered) {
		t.Fatalf("want ErrTopicUndiscovered, got %v", err)
	}
}

func TestGetTopic_NotFoundAndBadInput(t *testing.T) {
	h := newHarness(t)
	svc := newTopicService(h)
	ctx := context.Background()

	if _, err := svc.GetTopic(ctx, uuid.New(), TopicLookup{Name: "no such topic " + suffix()}); !errors.Is(err, domainknowledge.ErrTopicNotFound) {
		t.Fatalf("want ErrTopicNotFound, got %v", err)
	}
	if _, err := svc.GetTopic(ctx, uuid.New(), TopicLookup{}); !errors.Is(err, domainknowledge.ErrInvalidQuery) {
		t.Fatalf("want ErrInvalidQuery, got %v", err)
	}
}

func TestGetTopic_ByNameServesStoredArticle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	name := "galaxy " + suffix()
	topic := testutil.SeedTopic(t, ctx, h.db, name)
	testutil.SeedArticle(t, ctx, h.db, topic.ID, "en", "billions of stars", time.Now().UTC())
	userID := uuid.New()
	if err := h.discovery.Record(ctx, userID, topic.ID); err != nil {
		t.Fatalf("Record: %v", err)
	}
	svc := newTopicService(h)

	view, err := svc.GetTopic(ctx, userID, TopicLookup{Name: "  Galaxy " + name[len("galaxy "):]})
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if view.ID != topic.ID || view.Content != "billions of stars" || view.Language != "en" {
		t.Fatalf("view: %+v", view)
	}
	if view.Tags == nil {
		t.Fatalf("tags must be an empty list, not nil")
	}
	if h.gen.Calls() != 0 {
		t.Fatalf("generator calls: want=0 got=%d", h.gen.Calls())
	}
}

func TestGetTopic_GeneratesMissingLanguageLazily(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	name := "supernova " + suffix()
	topic := testutil.SeedTopic(t, ctx, h.db, name)
	testutil.SeedArticle(t, ctx, h.db, topic.ID, "en", "an exploding star", time.Now().UTC())
	userID := uuid.New()
	if err := h.discovery.Record(ctx, userID, topic.ID); err != nil {
		t.Fatalf("Record: %v", err)
	}
	h.gen.out = generated(t, map[string]any{
		"topic":         "초신성",
		"canonicalName": name,
		"content":       "폭발하는 별입니다.",
		"tags":          []string{"stars"},
	})
	svc := newTopicService(h)

	view, err := svc.GetTopic(ctx, userID, TopicLookup{ID: topic.ID, Language: "ko"})
	if err != nil {
		t.Fatalf("GetTopic: %v", err)
	}
	if h.gen.Calls() != 1 {
		t.Fatalf("generator calls: want=1 got=%d", h.gen.Calls())
	}
	if view.Content != "폭발하는 별입니다." || view.Language != "ko" {
		t.Fatalf("view: %+v", view)
	}
	if len(view.Tags) != 1 || view.Tags[0] != "stars" {
		t.Fatalf("tags: %v", view.Tags)
	}
	en, err := h.articles.GetByTopicLanguage(dbctx.Background(ctx), topic.ID, "en")
	if err != nil || en == nil || en.Content != "an exploding star" {
		t.Fatalf("en article untouched: %+v err=%v", en, err)
	}
}
