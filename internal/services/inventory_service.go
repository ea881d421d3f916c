// internal/services/inventory_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nexpoint/nexpoint-backend/internal/models"
)

// StockDecrement is one requested stock reduction.
type StockDecrement struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AppliedDecrement reports what the ledger actually subtracted. Applied is
// less than Requested when available stock ran short: the decrement is
// clamped at zero rather than rejected.
type AppliedDecrement struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
}

// StockAdjuster is the serialization point for stock mutation. All decrements
// in one call are applied as a single atomic unit, and concurrent decrements
// to the same product observe a total order (no lost updates). Restore adds
// applied quantities back, used as a compensating rollback when the order
// append fails after a successful decrement.
type StockAdjuster interface {
	ApplyDecrements(ctx context.Context, items []StockDecrement) ([]AppliedDecrement, error)
	Restore(ctx context.Context, items []AppliedDecrement) error
}

// InventoryService is the database-backed stock ledger. Each line is applied
// with a compare-and-set retry loop inside one transaction, so the final
// stock equals sequential application of all concurrent decrements and never
// goes negative.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// casAttempts bounds the per-line retry loop. Contention beyond this is
// reported as transient so the caller may retry the whole submission.
const casAttempts = 10

func (s *InventoryService) ApplyDecrements(ctx context.Context, items []StockDecrement) ([]AppliedDecrement, error) {
	applied := make([]AppliedDecrement, 0, len(items))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			result, err := applyOne(tx, item)
			if err != nil {
				return err
			}
			applied = append(applied, result)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	return applied, nil
}

func applyOne(tx *gorm.DB, item StockDecrement) (AppliedDecrement, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		var product models.Product
		if err := tx.Select("id", "stock").First(&product, "id = ?", item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AppliedDecrement{}, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
			}
			return AppliedDecrement{}, err
		}

		newStock := product.Stock - item.Quantity
		if newStock < 0 {
			newStock = 0
		}

		// Conditional update: only wins if nobody changed the stock since the
		// read. RowsAffected == 0 means another writer got there first.
		result := tx.Model(&models.Product{}).
			Where("id = ? AND stock = ?", item.ProductID, product.Stock).
			Update("stock", newStock)
		if result.Error != nil {
			return AppliedDecrement{}, result.Error
		}
		if result.RowsAffected == 1 {
			return AppliedDecrement{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Applied:   product.Stock - newStock,
			}, nil
		}
	}

	return AppliedDecrement{}, fmt.Errorf("stock contention on product %s", item.ProductID)
}

// Restore adds applied quantities back. It is only called to compensate a
// failed commit, so it does not clamp.
func (s *InventoryService) Restore(ctx context.Context, items []AppliedDecrement) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.Applied == 0 {
				continue
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Applied)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}
