// internal/models/product.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// LowStockThreshold is the stock level below which a product reports
// "Low Stock".
const LowStockThreshold = 20

// Product is a catalog entry. The id is assigned at creation from the
// product's category (e.g. "euro-3") and never changes afterwards. Status is
// derived from Stock on every read and write; it is never stored.
type Product struct {
	ID         string        `json:"id" gorm:"primaryKey;size:64"`
	Name       string        `json:"name" gorm:"size:255;not null"`
	Category   string        `json:"category" gorm:"size:100;not null;index"`
	Strength   string        `json:"strength" gorm:"size:100"`
	Stock      int           `json:"stock" gorm:"not null;default:0"`
	MultipleOf int           `json:"multipleOf" gorm:"not null;default:1"`
	Status     ProductStatus `json:"status" gorm:"-"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// StatusForStock derives the display status from a stock level.
func StatusForStock(stock int) ProductStatus {
	switch {
	case stock == 0:
		return ProductStatusOutOfStock
	case stock < LowStockThreshold:
		return ProductStatusLowStock
	default:
		return ProductStatusInStock
	}
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Status = StatusForStock(p.Stock)
	return nil
}

func (p *Product) AfterSave(tx *gorm.DB) error {
	p.Status = StatusForStock(p.Stock)
	return nil
}
