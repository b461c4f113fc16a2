package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/constella-backend/internal/domain"
)

// Models lists every table the service owns, in creation order.
func Models() []any {
	return []any{
		// Knowledge
		&types.Topic{},
		&types.Article{},
		&types.Alias{},
		&types.Tag{},
		&types.TopicTag{},

		// Users
		&types.User{},
		&types.DiscoveryRecord{},
		&types.ChatMessage{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// EnsureKnowledgeIndexes adds the Postgres-only indexes AutoMigrate cannot
// express. Other dialects are skipped.
func EnsureKnowledgeIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_alias_name_lower", `CREATE INDEX IF NOT EXISTS idx_alias_name_lower ON alias (lower(name));`},
		{"idx_ship_log_user_discovered", `CREATE INDEX IF NOT EXISTS idx_ship_log_user_discovered ON ship_log (user_id, discovered_at DESC);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
