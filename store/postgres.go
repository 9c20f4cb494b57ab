package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type orderRow struct {
	ID            string         `gorm:"primaryKey"`
	Products      []string       `gorm:"serializer:json"`
	Payment       models.Payment `gorm:"serializer:json"`
	TransactionID *string        `gorm:"uniqueIndex"` // NULL when the gateway gave no id
	Buyer         string         `gorm:"index;not null"`
	Status        string         `gorm:"type:VARCHAR(20);not null"`
	CreatedAt     time.Time      `gorm:"index"`
	UpdatedAt     time.Time
}

func (orderRow) TableName() string { return "orders" }

type userRow struct {
	ID       string `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"uniqueIndex;not null"`
	Password string
	Phone    string
	Address  string
	Answer   string
	Role     int `gorm:"default:0"`
}

func (userRow) TableName() string { return "users" }

type productRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Slug        string `gorm:"index"`
	Description string
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity    int
}

func (productRow) TableName() string { return "products" }

// Gorm is the relational backend. Orders keep products and payment as JSON
// columns so the row mirrors the document shape.
type Gorm struct {
	db      *gorm.DB
	timeout time.Duration
	now     func() time.Time
}

// OpenPostgres connects with the given DSN and migrates the schema.
func OpenPostgres(dsn string, timeout time.Duration) (*Gorm, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewGorm(db, timeout)
}

// NewGorm wraps an open connection and auto-migrates all tables.
func NewGorm(db *gorm.DB, timeout time.Duration) (*Gorm, error) {
	if err := db.AutoMigrate(&userRow{}, &productRow{}, &orderRow{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &Gorm{db: db, timeout: timeout, now: time.Now}, nil
}

func (g *Gorm) Close(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *Gorm) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	if tx := order.Payment.TransactionID; tx != "" {
		existing, err := g.orderByTransaction(ctx, tx)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return models.Order{}, err
		}
	}

	if err := order.Prepare(newID(), g.now().UTC()); err != nil {
		return models.Order{}, err
	}
	row := toOrderRow(order)
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		// Lost a race with a concurrent write of the same transaction.
		if row.TransactionID != nil {
			if existing, lookupErr := g.orderByTransaction(ctx, *row.TransactionID); lookupErr == nil {
				return existing, nil
			}
		}
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	return row.toModel(), nil
}

func (g *Gorm) orderByTransaction(ctx context.Context, tx string) (models.Order, error) {
	var row orderRow
	if err := g.db.WithContext(ctx).Where("transaction_id = ?", tx).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	return row.toModel(), nil
}

func (g *Gorm) GetOrder(ctx context.Context, id string) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var row orderRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	return row.toModel(), nil
}

func (g *Gorm) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	query := g.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if filter.Buyer != "" {
		query = query.Where("buyer = ?", filter.Buyer)
	}
	var rows []orderRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toModel())
	}
	return orders, nil
}

func (g *Gorm) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	result := g.db.WithContext(ctx).Model(&orderRow{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": string(status), "updated_at": g.now().UTC()})
	if result.Error != nil {
		return models.Order{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Order{}, ErrNotFound
	}
	return g.GetOrder(ctx, id)
}

func (g *Gorm) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	if user.ID == "" {
		user.ID = newID()
	}
	var count int64
	if err := g.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ? OR email = ?", user.ID, user.Email).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrDuplicate
	}
	row := userRow{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Phone:    user.Phone,
		Address:  user.Address,
		Answer:   user.Answer,
		Role:     int(user.Role),
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (g *Gorm) GetUser(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var row userRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return row.toModel(), nil
}

func (g *Gorm) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var row userRow
	if err := g.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return row.toModel(), nil
}

func (g *Gorm) UpdateUserProfile(ctx context.Context, id string, update ProfileUpdate) (models.User, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	updates := make(map[string]interface{})
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Phone != nil {
		updates["phone"] = *update.Phone
	}
	if update.Address != nil {
		updates["address"] = *update.Address
	}
	if update.Password != nil {
		updates["password"] = *update.Password
	}
	if len(updates) > 0 {
		result := g.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return models.User{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.User{}, ErrNotFound
		}
	}
	return g.GetUser(ctx, id)
}

func (g *Gorm) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var rows []userRow
	if err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

func (g *Gorm) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	if product.ID == "" {
		product.ID = newID()
	}
	row := productRow{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (g *Gorm) GetProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var rows []productRow
	if err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, models.Product{
			ID:          row.ID,
			Name:        row.Name,
			Slug:        row.Slug,
			Description: row.Description,
			Price:       row.Price,
			Quantity:    row.Quantity,
		})
	}
	return products, nil
}

func toOrderRow(o models.Order) orderRow {
	row := orderRow{
		ID:        o.ID,
		Products:  o.Products,
		Payment:   o.Payment,
		Buyer:     o.Buyer,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if tx := o.Payment.TransactionID; tx != "" {
		row.TransactionID = &tx
	}
	return row
}

func (r orderRow) toModel() models.Order {
	products := r.Products
	if products == nil {
		products = []string{}
	}
	return models.Order{
		ID:        r.ID,
		Products:  products,
		Payment:   r.Payment,
		Buyer:     r.Buyer,
		Status:    models.OrderStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r userRow) toModel() models.User {
	return models.User{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Phone:    r.Phone,
		Address:  r.Address,
		Answer:   r.Answer,
		Role:     models.Role(r.Role),
	}
}
