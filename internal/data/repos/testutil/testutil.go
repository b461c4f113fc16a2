package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/constella-backend/internal/data/db"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

// Logger is silent unless TEST_LOG_MODE is set (to any logger.New mode).
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	mode := os.Getenv("TEST_LOG_MODE")
	if mode == "" {
		return logger.Nop()
	}
	log, err := logger.New(mode)
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	tb.Cleanup(log.Sync)
	return log
}

var shared = struct {
	once sync.Once
	db   *gorm.DB
	err  error
}{}

// DB returns one migrated database per test binary. TEST_POSTGRES_DSN picks
// Postgres; otherwise a SQLite file in a temp dir is used.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	shared.once.Do(func() {
		dialector, err := testDialector()
		if err != nil {
			shared.err = err
			return
		}
		shared.db, shared.err = gorm.Open(dialector, &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if shared.err == nil {
			shared.err = db.AutoMigrateAll(shared.db)
		}
	})
	if shared.err != nil {
		tb.Fatalf("test db: %v", shared.err)
	}
	return shared.db
}

func testDialector() (gorm.Dialector, error) {
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		return postgres.Open(dsn), nil
	}
	dir, err := os.MkdirTemp("", "constella-test-")
	if err != nil {
		return nil, err
	}
	return sqlite.Open(filepath.Join(dir, "test.db") + "?_busy_timeout=5000"), nil
}

// Tx opens a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}
