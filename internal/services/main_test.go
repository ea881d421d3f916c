// internal/services/main_test.go
package services

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nexpoint/nexpoint-backend/internal/models"
)

// newTestDB opens a throwaway sqlite database with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.InvoiceRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, product models.Product) {
	t.Helper()
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product %s: %v", product.ID, err)
	}
}
