package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Topic is a canonical subject. Name is the trimmed, lower-cased canonical
// name and never changes once the row exists.
type Topic struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_topic_name" json:"name"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Topic) TableName() string { return "topic" }

func (t *Topic) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Article is the explanation of a Topic in one language.
// Extras keeps generator keys the normalizer did not recognize.
type Article struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_article_topic_language,priority:1" json:"topic_id"`
	Language  string         `gorm:"column:language;not null;uniqueIndex:idx_article_topic_language,priority:2" json:"language"`
	Title     string         `gorm:"column:title;not null;default:''" json:"title"`
	Content   string         `gorm:"column:content;type:text;not null;default:''" json:"content"`
	Extras    datatypes.JSON `gorm:"column:extras;type:jsonb" json:"extras,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;index" json:"updated_at"`
}

func (Article) TableName() string { return "article" }

func (a *Article) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Alias maps an alternative, unnormalized name to a Topic.
type Alias struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_alias_name" json:"name"`
	TopicID   uuid.UUID `gorm:"type:uuid;not null;index" json:"topic_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Alias) TableName() string { return "alias" }

func (a *Alias) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AliasName is an alias joined with the canonical name it points at.
type AliasName struct {
	Name      string
	TopicName string
}

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_tag_name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Tag) TableName() string { return "tag" }

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TopicTag struct {
	TopicID uuid.UUID `gorm:"type:uuid;primaryKey" json:"topic_id"`
	TagID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"tag_id"`
}

func (TopicTag) TableName() string { return "topic_tag" }
