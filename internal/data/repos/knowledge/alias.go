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

type AliasRepo interface {
	// InsertIgnore adds aliases for a topic. Names that already exist, for
	// this or any other topic, are left untouched.
	InsertIgnore(dbc dbctx.Context, topicID uuid.UUID, names []string) error
	GetTopicByAlias(dbc dbctx.Context, name string) (*types.Topic, error)
	ListAliasNames(dbc dbctx.Context) ([]types.AliasName, error)
}

type aliasRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAliasRepo(db *gorm.DB, baseLog *logger.Logger) AliasRepo {
	return &aliasRepo{db: db, log: baseLog.With("repo", "AliasRepo")}
}

func (r *aliasRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *aliasRepo) InsertIgnore(dbc dbctx.Context, topicID uuid.UUID, names []string) error {
	if topicID == uuid.Nil || len(names) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*types.Alias, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		rows = append(rows, &types.Alias{Name: n, TopicID: topicID, CreatedAt: now})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.tx(dbc).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
}

func (r *aliasRepo) GetTopicByAlias(dbc dbctx.Context, name string) (*types.Topic, error) {
	if name == "" {
		return nil, nil
	}
	var row types.Topic
	err := r.tx(dbc).
		Joins("JOIN alias ON alias.topic_id = topic.id").
		Where("alias.name = ?", name).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *aliasRepo) ListAliasNames(dbc dbctx.Context) ([]types.AliasName, error) {
	var out []types.AliasName
	err := r.tx(dbc).
		Model(&types.Alias{}).
		Select("alias.name AS name, topic.name AS topic_name").
		Joins("JOIN topic ON topic.id = alias.topic_id").
		Order("alias.name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
