package repo

import (
	"fmt"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestOpenSQLite_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	var count int64
	if err := db.Model(&domain.Feedback{}).Count(&count).Error; err != nil {
		t.Fatalf("count on fresh schema: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh table should be empty, got %d", count)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	if _, err := OpenSQLite(filepath.Join(t.TempDir(), "nope", "feedback.db")); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
