// internal/services/inventory_memory.go
package services

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStockAdjuster is a mutex-guarded in-process ledger for small
// deployments and tests. It honors the same contract as InventoryService:
// all lines atomic per call, decrements clamped at zero.
type MemoryStockAdjuster struct {
	mu    sync.Mutex
	stock map[string]int
}

func NewMemoryStockAdjuster(stock map[string]int) *MemoryStockAdjuster {
	s := make(map[string]int, len(stock))
	for id, qty := range stock {
		s[id] = qty
	}
	return &MemoryStockAdjuster{stock: s}
}

func (m *MemoryStockAdjuster) ApplyDecrements(ctx context.Context, items []StockDecrement) ([]AppliedDecrement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check every line before touching any, so the call is all-or-nothing.
	for _, item := range items {
		if _, ok := m.stock[item.ProductID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
	}

	applied := make([]AppliedDecrement, 0, len(items))
	for _, item := range items {
		current := m.stock[item.ProductID]
		newStock := current - item.Quantity
		if newStock < 0 {
			newStock = 0
		}
		m.stock[item.ProductID] = newStock
		applied = append(applied, AppliedDecrement{
			ProductID: item.ProductID,
			Requested: item.Quantity,
			Applied:   current - newStock,
		})
	}

	return applied, nil
}

func (m *MemoryStockAdjuster) Restore(ctx context.Context, items []AppliedDecrement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		m.stock[item.ProductID] += item.Applied
	}
	return nil
}

// Stock reports the current level for a product id.
func (m *MemoryStockAdjuster) Stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID]
}
