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

type TopicRepo interface {
	Upsert(dbc dbctx.Context, name string) (*types.Topic, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Topic, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error)
	GetByName(dbc dbctx.Context, name string) (*types.Topic, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.Topic, error)

	ListNames(dbc dbctx.Context) ([]string, error)
	ListIDsByName(dbc dbctx.Context) (map[string]uuid.UUID, error)

	AttachTags(dbc dbctx.Context, topicID uuid.UUID, tagIDs []uuid.UUID) error
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

// Upsert creates the topic or bumps updated_at on the existing row, and
// returns the stored row. The name is stored as given; callers canonicalize.
func (r *topicRepo) Upsert(dbc dbctx.Context, name string) (*types.Topic, error) {
	if name == "" {
		return nil, errors.New("topic name required")
	}
	now := time.Now().UTC()
	row := &types.Topic{Name: name, CreatedAt: now, UpdatedAt: now}
	err := r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByName(dbc, name)
}

func (r *topicRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Topic, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *topicRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error) {
	var out []*types.Topic
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetByName(dbc dbctx.Context, name string) (*types.Topic, error) {
	if name == "" {
		return nil, nil
	}
	var row types.Topic
	err := r.tx(dbc).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *topicRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Topic, error) {
	var out []*types.Topic
	if len(names) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("name IN ?", names).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) ListNames(dbc dbctx.Context) ([]string, error) {
	var out []string
	if err := r.tx(dbc).Model(&types.Topic{}).Order("name").Pluck("name", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) ListIDsByName(dbc dbctx.Context) (map[string]uuid.UUID, error) {
	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	if err := r.tx(dbc).Model(&types.Topic{}).Select("id, name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		out[row.Name] = row.ID
	}
	return out, nil
}

func (r *topicRepo) AttachTags(dbc dbctx.Context, topicID uuid.UUID, tagIDs []uuid.UUID) error {
	if topicID == uuid.Nil || len(tagIDs) == 0 {
		return nil
	}
	rows := make([]*types.TopicTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, &types.TopicTag{TopicID: topicID, TagID: id})
	}
	return r.tx(dbc).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
