// Package checkout turns a payment nonce and a cart into a charged payment and
// a stored order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/gateway"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
)

var (
	ErrMissingNonce = errors.New("payment nonce is required")
	ErrMissingBuyer = errors.New("buyer is required")
)

// PaymentError reports a charge that did not go through. No order exists.
type PaymentError struct {
	Err error
}

func (e *PaymentError) Error() string { return "payment failed: " + e.Err.Error() }
func (e *PaymentError) Unwrap() error { return e.Err }

// PersistError reports a captured payment whose order could not be written.
// The transaction id is what support needs to reconcile it by hand.
type PersistError struct {
	Payment models.Payment
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("order not recorded for transaction %s: %v", e.Payment.TransactionID, e.Err)
}
func (e *PersistError) Unwrap() error { return e.Err }

// Notifier hears about orders once they are stored.
type Notifier interface {
	OrderCreated(order models.Order)
}

type Config struct {
	// PersistAttempts bounds how often a paid order write is tried. One, the
	// default, means no retry.
	PersistAttempts int
	// RetryDelay grows linearly between attempts.
	RetryDelay time.Duration
	Notifier   Notifier
}

// Request is one checkout submission. Buyer comes from the verified session.
type Request struct {
	Buyer string
	Nonce string
	Cart  []models.CartItem
}

type Service struct {
	gateway gateway.Gateway
	orders  store.OrderStore
	cfg     Config
	log     *slog.Logger
}

func NewService(gw gateway.Gateway, orders store.OrderStore, cfg Config, log *slog.Logger) *Service {
	if cfg.PersistAttempts <= 0 {
		cfg.PersistAttempts = 1
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{gateway: gw, orders: orders, cfg: cfg, log: log}
}

func (s *Service) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// Checkout charges the cart total and records the order. The charge amount is
// computed here from the cart, never taken from the client. An order is only
// written after the gateway approved the sale.
func (s *Service) Checkout(ctx context.Context, req Request) (models.Order, error) {
	if strings.TrimSpace(req.Nonce) == "" {
		return models.Order{}, ErrMissingNonce
	}
	if req.Buyer == "" {
		return models.Order{}, ErrMissingBuyer
	}

	amount := models.CartTotal(req.Cart)
	log := s.log.With(slog.String("buyer", req.Buyer), slog.String("amount", amount.StringFixed(2)))

	// Once sent, a sale is not abandoned because the buyer went away; only the
	// gateway timeout bounds it.
	payment, err := s.gateway.Sale(context.WithoutCancel(ctx), gateway.SaleRequest{
		Amount:              amount,
		Nonce:               req.Nonce,
		SubmitForSettlement: true,
	})
	if err != nil {
		log.Warn("payment failed", slog.Any("err", err))
		return models.Order{}, &PaymentError{Err: err}
	}
	log = log.With(slog.String("transaction_id", payment.TransactionID))

	order := models.NewOrder(req.Buyer, models.CartProductIDs(req.Cart), payment)
	// The customer has been charged; a dropped request must not stop the write.
	saved, err := s.persist(context.WithoutCancel(ctx), order, log)
	if err != nil {
		log.Error("payment captured but order not recorded", slog.Any("err", err))
		return models.Order{}, &PersistError{Payment: payment, Err: err}
	}

	log.Info("order placed", slog.String("order_id", saved.ID))
	if s.cfg.Notifier != nil {
		s.cfg.Notifier.OrderCreated(saved)
	}
	return saved, nil
}

// persist retries the write. Stores dedupe on the transaction id, so a retry
// after an ambiguous failure cannot create a second order.
func (s *Service) persist(ctx context.Context, order models.Order, log *slog.Logger) (models.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.PersistAttempts; attempt++ {
		saved, err := s.orders.CreateOrder(ctx, order)
		if err == nil {
			return saved, nil
		}
		lastErr = err
		if errors.Is(err, models.ErrInvalidStatus) {
			break
		}
		log.Warn("order write failed", slog.Int("attempt", attempt), slog.Any("err", err))
		if attempt < s.cfg.PersistAttempts && s.cfg.RetryDelay > 0 {
			time.Sleep(time.Duration(attempt) * s.cfg.RetryDelay)
		}
	}
	return models.Order{}, lastErr
}
