package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment status values. An order starts pending and moves exactly once to
// success or failed; later callbacks must never un-terminate it.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// CustomerInfo is the contact/shipping record captured at checkout.
// Immutable after order creation.
type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

func (c CustomerInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CustomerInfo) Scan(value interface{}) error {
	return scanJSON(value, c)
}

// OrderItem pairs a product snapshot with a quantity. The product is copied
// by value so that catalog edits do not retroactively alter the order.
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// OrderItems is the jsonb-backed item list of an order.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *OrderItems) Scan(value interface{}) error {
	return scanJSON(value, items)
}

// JSONMap holds a raw gateway callback payload for audit and debugging.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	return scanJSON(value, m)
}

func scanJSON(value, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported jsonb source type")
	}
}

// Order is the durable payment record and the single source of truth for
// payment status.
type Order struct {
	ID            string       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerInfo  CustomerInfo `gorm:"type:jsonb;not null" json:"customerInfo"`
	Items         OrderItems   `gorm:"type:jsonb;not null" json:"items"`
	Total         string       `gorm:"type:decimal(10,2);not null" json:"total"`
	PaymentStatus string       `gorm:"not null;default:pending" json:"paymentStatus"`
	TransactionID string       `gorm:"index" json:"transactionId"`
	PayuResponse  JSONMap      `gorm:"type:jsonb" json:"payuResponse"`
	PaymentMethod string       `json:"paymentMethod"`
	CreatedAt     time.Time    `json:"createdAt"`
	UserID        *uint        `json:"userId"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// Terminal reports whether the order has reached a final payment state.
func (o *Order) Terminal() bool {
	return o.PaymentStatus == PaymentStatusSuccess || o.PaymentStatus == PaymentStatusFailed
}
