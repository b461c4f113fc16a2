package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/constella-backend/internal/data/repos"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

type Repos struct {
	Topic       repos.TopicRepo
	Article     repos.ArticleRepo
	Alias       repos.AliasRepo
	Tag         repos.TagRepo
	User        repos.UserRepo
	Discovery   repos.DiscoveryRepo
	ChatMessage repos.ChatMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Topic:       repos.NewTopicRepo(db, log),
		Article:     repos.NewArticleRepo(db, log),
		Alias:       repos.NewAliasRepo(db, log),
		Tag:         repos.NewTagRepo(db, log),
		User:        repos.NewUserRepo(db, log),
		Discovery:   repos.NewDiscoveryRepo(db, log),
		ChatMessage: repos.NewChatMessageRepo(db, log),
	}
}
