package knowledge

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/constella-backend/internal/domain"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type TagRepo interface {
	// EnsureByNames connects-or-creates a tag per distinct name.
	EnsureByNames(dbc dbctx.Context, names []string) ([]*types.Tag, error)
	ListByTopic(dbc dbctx.Context, topicID uuid.UUID) ([]*types.Tag, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (r *tagRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *tagRepo) EnsureByNames(dbc dbctx.Context, names []string) ([]*types.Tag, error) {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
	}
	out := []*types.Tag{}
	if len(uniq) == 0 {
		return out, nil
	}
	now := time.Now().UTC()
	rows := make([]*types.Tag, 0, len(uniq))
	for _, n := range uniq {
		rows = append(rows, &types.Tag{Name: n, CreatedAt: now})
	}
	if err := r.tx(dbc).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}
	if err := r.tx(dbc).Where("name IN ?", uniq).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) ListByTopic(dbc dbctx.Context, topicID uuid.UUID) ([]*types.Tag, error) {
	var out []*types.Tag
	err := r.tx(dbc).
		Joins("JOIN topic_tag ON topic_tag.tag_id = tag.id").
		Where("topic_tag.topic_id = ?", topicID).
		Order("tag.name").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
