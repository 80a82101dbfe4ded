package storage

import (
	"errors"
	"time"

	"github.com/atlanticweizard/storefront/models"

	"gorm.io/gorm"
)

// PostgresStorage is the production store backed by GORM/PostgreSQL.
type PostgresStorage struct {
	db *gorm.DB
}

// NewPostgresStorage wraps an initialized GORM connection.
func NewPostgresStorage(db *gorm.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) GetAllProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *PostgresStorage) GetProductByID(id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *PostgresStorage) CreateProduct(product *models.Product) error {
	return s.db.Create(product).Error
}

func (s *PostgresStorage) UpdateProduct(id string, product *models.Product) (*models.Product, error) {
	existing, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	product.ID = existing.ID
	if err := s.db.Model(existing).Updates(map[string]interface{}{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
		"image":       product.Image,
		"stock":       product.Stock,
	}).Error; err != nil {
		return nil, err
	}
	return s.GetProductByID(id)
}

func (s *PostgresStorage) DeleteProduct(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) GetAdminByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (s *PostgresStorage) CreateAdmin(admin *models.Admin) error {
	return s.db.Create(admin).Error
}

func (s *PostgresStorage) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStorage) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStorage) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *PostgresStorage) CreateOrder(order *models.Order) error {
	return s.db.Create(order).Error
}

func (s *PostgresStorage) GetAllOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresStorage) GetOrderByID(id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *PostgresStorage) GetUserOrders(userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresStorage) GetOrdersBetween(start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *PostgresStorage) UpdateOrderPayment(id string, update PaymentUpdate) (*models.Order, error) {
	res := s.db.Model(&models.Order{}).Where("id = ?", id).Updates(paymentColumns(update))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetOrderByID(id)
}

func (s *PostgresStorage) FinalizeOrderPayment(id string, update PaymentUpdate) (*models.Order, bool, error) {
	// Compare-and-set on payment_status: only a pending order may reach a
	// terminal state, so replayed or late callbacks cannot overwrite the
	// outcome of an earlier one.
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusPending).
		Updates(paymentColumns(update))
	if res.Error != nil {
		return nil, false, res.Error
	}
	order, err := s.GetOrderByID(id)
	if err != nil {
		return nil, false, err
	}
	return order, res.RowsAffected > 0, nil
}

func paymentColumns(update PaymentUpdate) map[string]interface{} {
	return map[string]interface{}{
		"payment_status": update.PaymentStatus,
		"transaction_id": update.TransactionID,
		"payu_response":  update.PayuResponse,
		"payment_method": update.PaymentMethod,
	}
}
