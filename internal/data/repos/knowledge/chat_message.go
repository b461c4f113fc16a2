package knowledge

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/constella-backend/internal/domain"
	"github.com/yungbote/constella-backend/internal/platform/dbctx"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type ChatMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error)
	// ListRecent returns the latest limit messages in chronological order.
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatMessage, error)
}

const defaultChatHistory = 50

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: baseLog.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

// Create stamps rows missing CreatedAt a microsecond apart so one batch
// keeps its order on read.
func (r *chatMessageRepo) Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error) {
	if len(rows) == 0 {
		return []*types.ChatMessage{}, nil
	}
	base := time.Now().UTC()
	for i, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chatMessageRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	out := []*types.ChatMessage{}
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = defaultChatHistory
	}
	// newest first from the index, then flipped to reading order
	err := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}
