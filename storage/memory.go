package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/atlanticweizard/storefront/models"

	"github.com/google/uuid"
)

// MemoryStorage is a mutex-guarded in-memory Storage used by the test suite
// and local tooling. It mirrors the PostgreSQL store's semantics, including
// the guarded terminal transition.
type MemoryStorage struct {
	mu       sync.RWMutex
	products map[string]models.Product
	admins   map[string]models.Admin
	users    map[uint]models.User
	orders   map[string]models.Order
	nextUser uint
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		products: make(map[string]models.Product),
		admins:   make(map[string]models.Admin),
		users:    make(map[uint]models.User),
		orders:   make(map[string]models.Order),
	}
}

func (s *MemoryStorage) GetAllProducts() ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (s *MemoryStorage) GetProductByID(id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (s *MemoryStorage) CreateProduct(product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	s.products[product.ID] = *product
	return nil
}

func (s *MemoryStorage) UpdateProduct(id string, product *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return nil, ErrNotFound
	}
	product.ID = id
	s.products[id] = *product
	updated := s.products[id]
	return &updated, nil
}

func (s *MemoryStorage) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStorage) GetAdminByEmail(email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if admin.Email == email {
			a := admin
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) CreateAdmin(admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	s.admins[admin.ID] = *admin
	return nil
}

func (s *MemoryStorage) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) GetUserByID(id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStorage) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		s.nextUser++
		user.ID = s.nextUser
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStorage) CreateOrder(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryStorage) GetAllOrders() ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *MemoryStorage) GetOrderByID(id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *MemoryStorage) GetUserOrders(userID uint) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []models.Order
	for _, o := range s.orders {
		if o.UserID != nil && *o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *MemoryStorage) GetOrdersBetween(start, end time.Time) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []models.Order
	for _, o := range s.orders {
		if !o.CreatedAt.Before(start) && !o.CreatedAt.After(end) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *MemoryStorage) UpdateOrderPayment(id string, update PaymentUpdate) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	applyPayment(&order, update)
	s.orders[id] = order
	return &order, nil
}

func (s *MemoryStorage) FinalizeOrderPayment(id string, update PaymentUpdate) (*models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if order.Terminal() {
		return &order, false, nil
	}
	applyPayment(&order, update)
	s.orders[id] = order
	return &order, true, nil
}

func applyPayment(order *models.Order, update PaymentUpdate) {
	order.PaymentStatus = update.PaymentStatus
	order.TransactionID = update.TransactionID
	order.PayuResponse = update.PayuResponse
	order.PaymentMethod = update.PaymentMethod
}
