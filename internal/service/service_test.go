package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hubcast/hubcast/internal/content"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// Single connection: sqlite rejects concurrent writers with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db
}

// fakeSource serves a fixed content snapshot for any id.
type fakeSource struct {
	content *content.Content
	err     error
}

func (s *fakeSource) Get(ctx context.Context, id string) (*content.Content, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := *s.content
	c.ID = id
	return &c, nil
}

func testContent() *content.Content {
	return &content.Content{
		ID:    "101",
		Title: "A Post Worth Sharing",
		Body:  "<p>Some body text long enough to format.</p>",
		URL:   "https://blog.example.com/a-post",
		Tags:  []string{"go", "queues"},
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
