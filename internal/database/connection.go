// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nexpoint/nexpoint-backend/internal/config"
	"github.com/nexpoint/nexpoint-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if cfg.LogLevel != "silent" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations")

	err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.InvoiceRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_name ON products(category, name)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
	}
	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
		}
	}

	return nil
}

// SeedInitialData loads a starter catalog when the products table is empty.
func SeedInitialData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	logrus.Info("Seeding initial catalog")

	products := []models.Product{
		{ID: "euro-0", Name: "Zyn Cool Mint", Category: "Euro Zyn Flavours", Strength: "6mg", Stock: 100, MultipleOf: 5},
		{ID: "euro-1", Name: "Zyn Citrus", Category: "Euro Zyn Flavours", Strength: "3mg", Stock: 100, MultipleOf: 5},
		{ID: "american-0", Name: "Zyn Wintergreen", Category: "American Zyn Flavours", Strength: "6mg", Stock: 100, MultipleOf: 5},
		{ID: "american-1", Name: "Zyn Coffee", Category: "American Zyn Flavours", Strength: "3mg", Stock: 100, MultipleOf: 5},
		{ID: "velo-0", Name: "VELO Ice Cool", Category: "VELO Flavour", Strength: "10mg", Stock: 100, MultipleOf: 5},
		{ID: "whitefox-0", Name: "White Fox Full Charge", Category: "White Fox", Strength: "16mg", Stock: 100, MultipleOf: 5},
	}

	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	return nil
}
