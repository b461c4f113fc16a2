package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/constella-backend/internal/domain"
)

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Topic {
	tb.Helper()
	now := time.Now().UTC()
	t := &types.Topic{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

func SeedArticle(tb testing.TB, ctx context.Context, tx *gorm.DB, topicID uuid.UUID, language, content string, updatedAt time.Time) *types.Article {
	tb.Helper()
	a := &types.Article{
		ID:        uuid.New(),
		TopicID:   topicID,
		Language:  language,
		Title:     "title",
		Content:   content,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed article: %v", err)
	}
	return a
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.User {
	tb.Helper()
	u := &types.User{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}
