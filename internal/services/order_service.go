// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nexpoint/nexpoint-backend/internal/models"
	"github.com/nexpoint/nexpoint-backend/internal/utils"
)

// Dispatcher receives a confirmed order for invoice generation and customer
// notification. Its outcome never changes a submission result that has
// already been returned.
type Dispatcher interface {
	Dispatch(order *models.Order)
}

// OrderService orchestrates order submission and owns the append-only order
// store. A submission either commits as one unit (stock decremented, order
// persisted with the applied quantities) or fails cleanly.
type OrderService struct {
	db         *gorm.DB
	catalog    *CatalogService
	adjuster   StockAdjuster
	dispatcher Dispatcher
	numbers    *OrderNumberGenerator
}

type CartItem struct {
	ProductID string `json:"id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type SubmitOrderRequest struct {
	CustomerName string     `json:"customerName" validate:"required,min=1,max=255"`
	StoreName    string     `json:"storeName" validate:"required,min=1,max=255"`
	Email        string     `json:"email" validate:"required,email"`
	Phone        string     `json:"phone" validate:"required,min=5,max=64"`
	Items        []CartItem `json:"items" validate:"required,min=1,dive"`
}

// stepTimeout bounds each persistence step of a submission. A timeout
// surfaces as ErrPersistenceUnavailable with nothing committed.
const stepTimeout = 10 * time.Second

// timestampLayout matches the persisted order contract: MM/DD/YYYY, 24h time.
const timestampLayout = "01/02/2006, 15:04:05"

func NewOrderService(db *gorm.DB, catalog *CatalogService, adjuster StockAdjuster, dispatcher Dispatcher) *OrderService {
	return &OrderService{
		db:         db,
		catalog:    catalog,
		adjuster:   adjuster,
		dispatcher: dispatcher,
		numbers:    NewOrderNumberGenerator(),
	}
}

// SubmitOrder validates the cart, decrements stock and persists the order as
// one logical transaction, then hands the confirmed order to the dispatcher.
// The returned order number is definitive: everything after it is
// best-effort.
func (s *OrderService) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	// The same product may appear on several cart lines; quantities are
	// merged before validation. The sum of two valid multiples is itself a
	// valid multiple, so merging never invalidates a valid cart.
	lines := mergeCartLines(req.Items)

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	catalogCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	products, err := s.catalog.GetProductsByIDs(catalogCtx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	decrements := make([]StockDecrement, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown product %q", ErrValidationFailed, line.ProductID)
		}
		if line.Quantity <= 0 || line.Quantity%product.MultipleOf != 0 {
			return nil, fmt.Errorf("%w: product %q: quantity %d is not a positive multiple of %d",
				ErrValidationFailed, line.ProductID, line.Quantity, product.MultipleOf)
		}
		decrements = append(decrements, StockDecrement{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	orderNumber := s.numbers.Next()

	applyCtx, cancelApply := context.WithTimeout(ctx, stepTimeout)
	defer cancelApply()
	applied, err := s.adjuster.ApplyDecrements(applyCtx, decrements)
	if err != nil {
		// Nothing was committed; classify and surface.
		return nil, commitError(err)
	}

	// The persisted line quantities are what the ledger actually applied, so
	// order history always agrees with ledger state.
	items := make(models.OrderItems, 0, len(applied))
	for _, a := range applied {
		product := products[a.ProductID]
		items = append(items, models.OrderItem{
			ProductID: a.ProductID,
			Name:      product.Name,
			Strength:  product.Strength,
			Quantity:  a.Applied,
		})
	}

	order := &models.Order{
		OrderNumber:  orderNumber,
		CustomerName: req.CustomerName,
		StoreName:    req.StoreName,
		Email:        req.Email,
		Phone:        req.Phone,
		Items:        items,
		Timestamp:    time.Now().Format(timestampLayout),
	}

	appendCtx, cancelAppend := context.WithTimeout(ctx, stepTimeout)
	defer cancelAppend()
	if err := s.Append(appendCtx, order); err != nil {
		// Compensate the decrement on a fresh context: caller cancellation
		// must not leave stock consumed without its order.
		restoreCtx, cancelRestore := context.WithTimeout(context.Background(), stepTimeout)
		defer cancelRestore()
		if restoreErr := s.adjuster.Restore(restoreCtx, applied); restoreErr != nil {
			logrus.WithFields(logrus.Fields{
				"order_number": orderNumber,
				"error":        restoreErr,
			}).Error("Failed to restore stock after order append failure")
		}
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(order)
	}

	return order, nil
}

// Append persists an order. Orders are append-only: no update or delete path
// exists. The duplicate check is defensive; the generation scheme makes
// collisions practically unreachable, but the unique index backs it up.
func (s *OrderService) Append(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).
			Where("order_number = ?", order.OrderNumber).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, order.OrderNumber)
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		return nil
	})
}

// ListOrders returns order history newest first, restartable via limit and
// offset.
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int) ([]models.Order, int64, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	return orders, total, nil
}

// GetOrder looks up a single order by its number.
func (s *OrderService) GetOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "order_number = ?", orderNumber).Error; err != nil {
		return nil, fmt.Errorf("order %s: %w", orderNumber, err)
	}
	return &order, nil
}

func mergeCartLines(items []CartItem) []CartItem {
	merged := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if at, ok := index[item.ProductID]; ok {
			merged[at].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

func commitError(err error) error {
	if errors.Is(err, ErrPersistenceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCommitFailed, err)
}
