package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
)

// Memory keeps everything in maps guarded by one lock.
type Memory struct {
	mu       sync.RWMutex
	orders   map[string]models.Order
	byTx     map[string]string
	users    map[string]models.User
	emails   map[string]string
	products map[string]models.Product

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		orders:   make(map[string]models.Order),
		byTx:     make(map[string]string),
		users:    make(map[string]models.User),
		emails:   make(map[string]string),
		products: make(map[string]models.Product),
		now:      time.Now,
	}
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}

func (m *Memory) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx := order.Payment.TransactionID; tx != "" {
		if id, ok := m.byTx[tx]; ok {
			return cloneOrder(m.orders[id]), nil
		}
	}
	if err := order.Prepare(newID(), m.now().UTC()); err != nil {
		return models.Order{}, err
	}
	if _, ok := m.orders[order.ID]; ok {
		return models.Order{}, ErrDuplicate
	}

	order = cloneOrder(order)
	m.orders[order.ID] = order
	if tx := order.Payment.TransactionID; tx != "" {
		m.byTx[tx] = order.ID
	}
	return cloneOrder(order), nil
}

func (m *Memory) GetOrder(ctx context.Context, id string) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return cloneOrder(order), nil
}

func (m *Memory) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := make([]models.Order, 0, len(m.orders))
	for _, order := range m.orders {
		if filter.Buyer != "" && order.Buyer != filter.Buyer {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = m.now().UTC()
	m.orders[id] = order
	return cloneOrder(order), nil
}

func (m *Memory) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		user.ID = newID()
	}
	if _, ok := m.users[user.ID]; ok {
		return models.User{}, ErrDuplicate
	}
	if _, ok := m.emails[user.Email]; ok && user.Email != "" {
		return models.User{}, ErrDuplicate
	}
	m.users[user.ID] = user
	if user.Email != "" {
		m.emails[user.Email] = user.ID
	}
	return user, nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok || email == "" {
		return models.User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) UpdateUserProfile(ctx context.Context, id string, update ProfileUpdate) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.Password != nil {
		user.Password = *update.Password
	}
	m.users[id] = user
	return user, nil
}

func (m *Memory) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range dedupe(ids) {
		if user, ok := m.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *Memory) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if product.ID == "" {
		product.ID = newID()
	}
	if _, ok := m.products[product.ID]; ok {
		return models.Product{}, ErrDuplicate
	}
	m.products[product.ID] = product
	return product, nil
}

func (m *Memory) GetProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range dedupe(ids) {
		if product, ok := m.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Products = append([]string{}, o.Products...)
	return o
}
