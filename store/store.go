// Package store persists users, products and orders. Three backends share the
// same contract: memory for local runs and tests, mongo as the document
// database, and postgres through GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// OrderFilter narrows ListOrders. The zero value lists every order.
type OrderFilter struct {
	Buyer string
}

type OrderStore interface {
	// CreateOrder persists a new order. An order whose payment carries a
	// transaction id already on file is not written twice; the stored order is
	// returned instead.
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	// ListOrders returns orders newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error)
}

// ProfileUpdate carries the fields a user may edit. Nil fields are unchanged.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	Address  *string
	// Password is a bcrypt hash, never plaintext.
	Password *string
}

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUsers(ctx context.Context, ids []string) ([]models.User, error)
	UpdateUserProfile(ctx context.Context, id string, update ProfileUpdate) (models.User, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)
	GetProducts(ctx context.Context, ids []string) ([]models.Product, error)
}

type Store interface {
	OrderStore
	UserStore
	ProductStore
	Close(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Driver        string // memory, mongo or postgres
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
	Timeout       time.Duration
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return NewMemory(), nil
	case "mongo":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Timeout)
	case "postgres":
		return OpenPostgres(cfg.PostgresDSN, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func newID() string {
	return uuid.NewString()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
