package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/constella-backend/internal/data/repos/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type TopicRepo = knowledge.TopicRepo
type ArticleRepo = knowledge.ArticleRepo
type AliasRepo = knowledge.AliasRepo
type TagRepo = knowledge.TagRepo

type UserRepo = knowledge.UserRepo
type DiscoveryRepo = knowledge.DiscoveryRepo
type ChatMessageRepo = knowledge.ChatMessageRepo

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return knowledge.NewTopicRepo(db, baseLog)
}
func NewArticleRepo(db *gorm.DB, baseLog *logger.Logger) ArticleRepo {
	return knowledge.NewArticleRepo(db, baseLog)
}
func NewAliasRepo(db *gorm.DB, baseLog *logger.Logger) AliasRepo {
	return knowledge.NewAliasRepo(db, baseLog)
}
func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return knowledge.NewTagRepo(db, baseLog)
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return knowledge.NewUserRepo(db, baseLog)
}
func NewDiscoveryRepo(db *gorm.DB, baseLog *logger.Logger) DiscoveryRepo {
	return knowledge.NewDiscoveryRepo(db, baseLog)
}
func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return knowledge.NewChatMessageRepo(db, baseLog)
}
