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

type DiscoveryRepo interface {
	// Upsert records (user, topic) once; later calls refresh discovered_at.
	Upsert(dbc dbctx.Context, userID, topicID uuid.UUID, at time.Time) error
	Exists(dbc dbctx.Context, userID, topicID uuid.UUID) (bool, error)
	Get(dbc dbctx.Context, userID, topicID uuid.UUID) (*types.DiscoveryRecord, error)
	ListTopicIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListEntries(dbc dbctx.Context, userID uuid.UUID) ([]types.ShipLogEntry, error)
}

type discoveryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscoveryRepo(db *gorm.DB, baseLog *logger.Logger) DiscoveryRepo {
	return &discoveryRepo{db: db, log: baseLog.With("repo", "DiscoveryRepo")}
}

func (r *discoveryRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *discoveryRepo) Upsert(dbc dbctx.Context, userID, topicID uuid.UUID, at time.Time) error {
	if userID == uuid.Nil || topicID == uuid.Nil {
		return errors.New("discovery requires user_id and topic_id")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := &types.DiscoveryRecord{UserID: userID, TopicID: topicID, DiscoveredAt: at}
	return r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"discovered_at"}),
		}).
		Create(row).Error
}

func (r *discoveryRepo) Exists(dbc dbctx.Context, userID, topicID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || topicID == uuid.Nil {
		return false, nil
	}
	var n int64
	err := r.tx(dbc).Model(&types.DiscoveryRecord{}).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Count(&n).Error
	return n > 0, err
}

func (r *discoveryRepo) Get(dbc dbctx.Context, userID, topicID uuid.UUID) (*types.DiscoveryRecord, error) {
	var row types.DiscoveryRecord
	err := r.tx(dbc).Where("user_id = ? AND topic_id = ?", userID, topicID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *discoveryRepo) ListTopicIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if userID == uuid.Nil {
		return out, nil
	}
	err := r.tx(dbc).Model(&types.DiscoveryRecord{}).
		Where("user_id = ?", userID).
		Order("discovered_at DESC").
		Pluck("topic_id", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListEntries returns the user's ship log, newest discovery first.
func (r *discoveryRepo) ListEntries(dbc dbctx.Context, userID uuid.UUID) ([]types.ShipLogEntry, error) {
	out := []types.ShipLogEntry{}
	if userID == uuid.Nil {
		return out, nil
	}
	err := r.tx(dbc).
		Table("ship_log").
		Select("ship_log.id AS id, ship_log.topic_id AS topic_id, topic.name AS name, ship_log.discovered_at AS discovered_at, topic.updated_at AS last_updated").
		Joins("JOIN topic ON topic.id = ship_log.topic_id").
		Where("ship_log.user_id = ?", userID).
		Order("ship_log.discovered_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
