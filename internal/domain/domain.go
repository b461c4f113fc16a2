package domain

import (
	"github.com/yungbote/constella-backend/internal/domain/knowledge"
)

type Topic = knowledge.Topic
type Article = knowledge.Article
type Alias = knowledge.Alias
type AliasName = knowledge.AliasName
type Tag = knowledge.Tag
type TopicTag = knowledge.TopicTag
type User = knowledge.User
type DiscoveryRecord = knowledge.DiscoveryRecord
type ShipLogEntry = knowledge.ShipLogEntry
type ChatMessage = knowledge.ChatMessage

const (
	ChatRoleUser      = knowledge.ChatRoleUser
	ChatRoleAssistant = knowledge.ChatRoleAssistant
)
