// internal/models/invoice.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// InvoiceRecord tracks the rendered invoice document and its delivery
// attempts. The document itself is retained content-addressed by order number
// so a failed delivery can be retried by an operator later.
type InvoiceRecord struct {
	BaseModel
	OrderNumber   string         `json:"order_number" gorm:"size:64;uniqueIndex;not null"`
	StorageKey    string         `json:"storage_key" gorm:"size:255;not null"`
	Recipients    pq.StringArray `json:"recipients" gorm:"type:text[]"`
	Status        DeliveryStatus `json:"status" gorm:"type:varchar(20);not null"`
	Error         string         `json:"error,omitempty" gorm:"type:text"`
	AttemptCount  int            `json:"attempt_count" gorm:"default:0"`
	LastAttemptAt *time.Time     `json:"last_attempt_at,omitempty"`
}
