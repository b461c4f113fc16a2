package knowledge

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/constella-backend/internal/domain"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type ArticleRepo interface {
	// Upsert writes the article for (topic_id, language), replacing any
	// existing body. Articles are never deleted.
	Upsert(dbc dbctx.Context, row *types.Article) (*types.Article, error)
	GetByTopicLanguage(dbc dbctx.Context, topicID uuid.UUID, language string) (*types.Article, error)
	ListByTopic(dbc dbctx.Context, topicID uuid.UUID) ([]*types.Article, error)
}

type articleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArticleRepo(db *gorm.DB, baseLog *logger.Logger) ArticleRepo {
	return &articleRepo{db: db, log: baseLog.With("repo", "ArticleRepo")}
}

func (r *articleRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *articleRepo) Upsert(dbc dbctx.Context, row *types.Article) (*types.Article, error) {
	if row == nil || row.TopicID == uuid.Nil || row.Language == "" {
		return nil, errors.New("article requires topic_id and language")
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	err := r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "topic_id"}, {Name: "language"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "content", "extras", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByTopicLanguage(dbc, row.TopicID, row.Language)
}

func (r *articleRepo) GetByTopicLanguage(dbc dbctx.Context, topicID uuid.UUID, language string) (*types.Article, error) {
	if topicID == uuid.Nil || language == "" {
		return nil, nil
	}
	var row types.Article
	err := r.tx(dbc).Where("topic_id = ? AND language = ?", topicID, language).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *articleRepo) ListByTopic(dbc dbctx.Context, topicID uuid.UUID) ([]*types.Article, error) {
	var out []*types.Article
	if topicID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).Where("topic_id = ?", topicID).Order("language").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
