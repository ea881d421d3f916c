// internal/models/order.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OrderItem is a denormalized snapshot of a product at order time. Name and
// strength are captured so later catalog edits or deletions cannot corrupt
// order history. Quantity is what the ledger actually applied, which may be
// less than the customer requested when stock ran short.
type OrderItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Strength  string `json:"strength"`
	Quantity  int    `json:"quantity"`
}

// OrderItems serializes the line items as a single JSON column, mirroring the
// wire contract.
type OrderItems []OrderItem

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for OrderItems: %T", value)
	}

	return json.Unmarshal(bytes, o)
}

// Order is append-only: once persisted it is never mutated or deleted.
// Confirmation of a submission is defined as this row existing.
type Order struct {
	BaseModel
	OrderNumber  string     `json:"orderNumber" gorm:"size:64;uniqueIndex;not null"`
	CustomerName string     `json:"customerName" gorm:"size:255;not null"`
	StoreName    string     `json:"storeName" gorm:"size:255;not null"`
	Email        string     `json:"email" gorm:"size:255;not null"`
	Phone        string     `json:"phone" gorm:"size:64;not null"`
	Items        OrderItems `json:"items" gorm:"type:jsonb;not null"`
	Timestamp    string     `json:"timestamp" gorm:"size:64;not null"`
}
