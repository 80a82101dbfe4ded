// Package storage defines the persistence boundary of the storefront. The
// order records kept here are the single source of truth for payment status.
package storage

import (
	"errors"
	"time"

	"github.com/atlanticweizard/storefront/models"
)

// ErrNotFound is returned when a product, order, admin or user does not
// exist. Callers map it to a 404 or, on callback endpoints, to a failure
// redirect.
var ErrNotFound = errors.New("record not found")

// PaymentUpdate carries the payment fields written on gateway handoff and
// on callback reconciliation.
type PaymentUpdate struct {
	PaymentStatus string
	TransactionID string
	PayuResponse  models.JSONMap
	PaymentMethod string
}

// Storage is the persistence contract consumed by the HTTP layer. Both the
// PostgreSQL store and the in-memory test store implement it.
type Storage interface {
	GetAllProducts() ([]models.Product, error)
	GetProductByID(id string) (*models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(id string, product *models.Product) (*models.Product, error)
	DeleteProduct(id string) error

	GetAdminByEmail(email string) (*models.Admin, error)
	CreateAdmin(admin *models.Admin) error

	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	CreateUser(user *models.User) error

	CreateOrder(order *models.Order) error
	GetAllOrders() ([]models.Order, error)
	GetOrderByID(id string) (*models.Order, error)
	GetUserOrders(userID uint) ([]models.Order, error)
	GetOrdersBetween(start, end time.Time) ([]models.Order, error)

	// UpdateOrderPayment writes payment fields unconditionally. Used only
	// while the order is being handed off (still pending).
	UpdateOrderPayment(id string, update PaymentUpdate) (*models.Order, error)

	// FinalizeOrderPayment applies a terminal payment state only when the
	// order is still pending. The bool reports whether the transition was
	// applied; a false result with a nil error means the order had already
	// reached a terminal state and was left untouched.
	FinalizeOrderPayment(id string, update PaymentUpdate) (*models.Order, bool, error)
}
