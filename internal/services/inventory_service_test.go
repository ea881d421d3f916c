// internal/services/inventory_service_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexpoint/nexpoint-backend/internal/models"
)

func TestApplyDecrementsExactStock(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, models.Product{ID: "euro-0", Name: "Zyn Cool Mint", Category: "Euro Nicotine Pouches", Stock: 100, MultipleOf: 5})

	svc := NewInventoryService(db)

	applied, err := svc.ApplyDecrements(context.Background(), []StockDecrement{
		{ProductID: "euro-0", Quantity: 30},
	})
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, 30, applied[0].Requested)
	assert.Equal(t, 30, applied[0].Applied)

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", "euro-0").Error)
	assert.Equal(t, 70, product.Stock)
}

func TestApplyDecrementsClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, models.Product{ID: "euro-0", Name: "Zyn Cool Mint", Category: "Euro Nicotine Pouches", Stock: 12, MultipleOf: 5})

	svc := NewInventoryService(db)

	applied, err := svc.ApplyDecrements(context.Background(), []StockDecrement{
		{ProductID: "euro-0", Quantity: 15},
	})
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, 15, applied[0].Requested)
	assert.Equal(t, 12, applied[0].Applied)

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", "euro-0").Error)
	assert.Equal(t, 0, product.Stock)
	assert.Equal(t, models.ProductStatusOutOfStock, product.Status)
}

func TestApplyDecrementsUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, models.Product{ID: "euro-0", Name: "Zyn Cool Mint", Category: "Euro Nicotine Pouches", Stock: 50, MultipleOf: 5})

	svc := NewInventoryService(db)

	_, err := svc.ApplyDecrements(context.Background(), []StockDecrement{
		{ProductID: "euro-0", Quantity: 10},
		{ProductID: "missing-9", Quantity: 5},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound))

	// The transaction rolled back, so the first line left no trace.
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", "euro-0").Error)
	assert.Equal(t, 50, product.Stock)
}

func TestRestoreAddsAppliedBack(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, models.Product{ID: "euro-0", Name: "Zyn Cool Mint", Category: "Euro Nicotine Pouches", Stock: 40, MultipleOf: 5})

	svc := NewInventoryService(db)

	applied, err := svc.ApplyDecrements(context.Background(), []StockDecrement{
		{ProductID: "euro-0", Quantity: 25},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Restore(context.Background(), applied))

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", "euro-0").Error)
	assert.Equal(t, 40, product.Stock)
}

func TestMemoryAdjusterClampAndRestore(t *testing.T) {
	adjuster := NewMemoryStockAdjuster(map[string]int{"euro-0": 12})

	applied, err := adjuster.ApplyDecrements(context.Background(), []StockDecrement{
		{ProductID: "euro-0", Quantity: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 12, applied[0].Applied)
	assert.Equal(t, 0, adjuster.Stock("euro-0"))

	require.NoError(t, adjuster.Restore(context.Background(), applied))
	assert.Equal(t, 12, adjuster.Stock("euro-0"))
}

func TestMemoryAdjusterUnknownProductAllOrNothing(t *testing.T) {
	adjuster := NewMemoryStockAdjuster(map[string]int{"euro-0": 30})

	_, err := adjuster.ApplyDecrements(context.Background(), []StockDecrement{
		{ProductID: "euro-0", Quantity: 10},
		{ProductID: "missing-9", Quantity: 5},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, 30, adjuster.Stock("euro-0"))
}

// Concurrent decrements against one product must sum to exactly the initial
// stock once it runs out, with no lost updates and no negative level.
func TestMemoryAdjusterConcurrentDecrements(t *testing.T) {
	const (
		initialStock = 100
		workers      = 40
		perWorker    = 5
	)

	adjuster := NewMemoryStockAdjuster(map[string]int{"euro-0": initialStock})

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		totalApplied int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := adjuster.ApplyDecrements(context.Background(), []StockDecrement{
				{ProductID: "euro-0", Quantity: perWorker},
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			totalApplied += applied[0].Applied
			mu.Unlock()
		}()
	}
	wg.Wait()

	// 40 workers requesting 5 each is 200 against 100 in stock: exactly the
	// initial stock is consumed, the rest is clamped away.
	assert.Equal(t, initialStock, totalApplied)
	assert.Equal(t, 0, adjuster.Stock("euro-0"))
}

func TestInventoryServiceConcurrentDecrements(t *testing.T) {
	const (
		initialStock = 50
		workers      = 10
		perWorker    = 10
	)

	db := newTestDB(t)
	seedProduct(t, db, models.Product{ID: "euro-0", Name: "Zyn Cool Mint", Category: "Euro Nicotine Pouches", Stock: initialStock, MultipleOf: 5})

	svc := NewInventoryService(db)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		totalApplied int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := svc.ApplyDecrements(context.Background(), []StockDecrement{
				{ProductID: "euro-0", Quantity: perWorker},
			})
			if err != nil {
				// A worker that exhausted its retries applied nothing.
				return
			}
			mu.Lock()
			totalApplied += applied[0].Applied
			mu.Unlock()
		}()
	}
	wg.Wait()

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", "euro-0").Error)

	assert.GreaterOrEqual(t, product.Stock, 0)
	assert.Equal(t, initialStock-product.Stock, totalApplied)
}
