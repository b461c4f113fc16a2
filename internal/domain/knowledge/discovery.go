package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the identity owned by the auth provider. Only the id is kept.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "user" }

// DiscoveryRecord marks that a user has visited a Topic. There is at most one
// row per (user, topic); repeat visits refresh DiscoveredAt.
type DiscoveryRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ship_log_user_topic,priority:1" json:"user_id"`
	TopicID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ship_log_user_topic,priority:2;index" json:"topic_id"`
	DiscoveredAt time.Time `gorm:"not null;index" json:"discovered_at"`
}

func (DiscoveryRecord) TableName() string { return "ship_log" }

func (d *DiscoveryRecord) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// ShipLogEntry is a DiscoveryRecord joined with its Topic.
type ShipLogEntry struct {
	ID           uuid.UUID `json:"id"`
	TopicID      uuid.UUID `json:"topic_id"`
	Name         string    `json:"name"`
	DiscoveredAt time.Time `json:"discovered_at"`
	LastUpdated  time.Time `json:"last_updated"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_message_user_created,priority:1" json:"user_id"`
	Role      string    `gorm:"column:role;not null" json:"role"`
	Content   string    `gorm:"column:content;type:text;not null;default:''" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_chat_message_user_created,priority:2" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_message" }

func (m *ChatMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
