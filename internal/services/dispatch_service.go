// internal/services/dispatch_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nexpoint/nexpoint-backend/internal/models"
)

// DispatchService drives the post-confirmation side effects: render the
// invoice, retain it, deliver it. It runs detached from the submitting
// request, and every step is idempotent to re-run, so a dispatch interrupted
// by shutdown can simply be redone from the durable order.
type DispatchService struct {
	db       *gorm.DB
	invoices *InvoiceService
	storage  *StorageService
	notifier *NotificationService

	wg sync.WaitGroup
}

func NewDispatchService(db *gorm.DB, invoices *InvoiceService, storage *StorageService, notifier *NotificationService) *DispatchService {
	return &DispatchService{
		db:       db,
		invoices: invoices,
		storage:  storage,
		notifier: notifier,
	}
}

// Dispatch hands off a confirmed order. It returns immediately; the outcome
// is recorded and logged, never surfaced to the purchasing customer.
func (s *DispatchService) Dispatch(order *models.Order) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"order_number": order.OrderNumber,
					"panic":        r,
				}).Error("Invoice dispatch panicked")
			}
		}()
		s.process(order)
	}()
}

// Wait blocks until in-flight dispatches finish, for graceful shutdown.
func (s *DispatchService) Wait() {
	s.wg.Wait()
}

func (s *DispatchService) process(order *models.Order) {
	document, err := s.invoices.Render(order)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_number": order.OrderNumber,
			"error":        err,
		}).Error("Failed to render invoice")
		s.record(order.OrderNumber, "", DeliveryResult{Status: models.DeliveryStatusFailed, Err: err})
		return
	}

	key, err := s.storage.SaveInvoice(order.OrderNumber, document)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_number": order.OrderNumber,
			"error":        err,
		}).Error("Failed to retain invoice")
		s.record(order.OrderNumber, "", DeliveryResult{Status: models.DeliveryStatusFailed, Err: err})
		return
	}

	result := s.notifier.SendOrderConfirmation(order, document)
	s.record(order.OrderNumber, key, result)

	logrus.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"status":       result.Status,
	}).Info("Invoice dispatch finished")
}

// Redeliver re-sends a retained invoice; the out-of-band operator retry for a
// failed or skipped delivery. The document is re-rendered from the order when
// the retained copy is missing.
func (s *DispatchService) Redeliver(ctx context.Context, orderNumber string) (DeliveryResult, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeliveryResult{}, fmt.Errorf("order %s not found", orderNumber)
		}
		return DeliveryResult{}, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	document, err := s.storage.LoadInvoice(orderNumber)
	if err != nil {
		if !errors.Is(err, ErrInvoiceNotFound) {
			return DeliveryResult{}, err
		}
		if document, err = s.invoices.Render(&order); err != nil {
			return DeliveryResult{}, err
		}
		if _, err := s.storage.SaveInvoice(orderNumber, document); err != nil {
			return DeliveryResult{}, err
		}
	}

	result := s.notifier.SendOrderConfirmation(&order, document)
	s.record(orderNumber, orderNumber+".pdf", result)

	return result, nil
}

// record upserts the invoice record for an order with the latest delivery
// outcome.
func (s *DispatchService) record(orderNumber, key string, result DeliveryResult) {
	now := time.Now()

	var record models.InvoiceRecord
	err := s.db.First(&record, "order_number = ?", orderNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithFields(logrus.Fields{
			"order_number": orderNumber,
			"error":        err,
		}).Error("Failed to load invoice record")
		return
	}

	record.OrderNumber = orderNumber
	if key != "" {
		record.StorageKey = key
	}
	record.Recipients = result.Recipients
	record.Status = result.Status
	record.Error = ""
	if result.Err != nil {
		record.Error = result.Err.Error()
	}
	record.AttemptCount++
	record.LastAttemptAt = &now

	if err := s.db.Save(&record).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"order_number": orderNumber,
			"error":        err,
		}).Error("Failed to save invoice record")
	}
}

// GetRecord returns the delivery ledger entry for an order.
func (s *DispatchService) GetRecord(ctx context.Context, orderNumber string) (*models.InvoiceRecord, error) {
	var record models.InvoiceRecord
	if err := s.db.WithContext(ctx).First(&record, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, orderNumber)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return &record, nil
}
