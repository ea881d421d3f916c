// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key in the application instead of relying
// on a database default, so the same models run against Postgres and the
// sqlite test driver.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Enums
type ProductStatus string

const (
	ProductStatusInStock    ProductStatus = "In Stock"
	ProductStatusLowStock   ProductStatus = "Low Stock"
	ProductStatusOutOfStock ProductStatus = "Out of Stock"
)

type DeliveryStatus string

const (
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusSkipped DeliveryStatus = "skipped"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)
