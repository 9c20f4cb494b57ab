package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
)

const (
	MsgPaymentSuccess = "Payment Completed Successfully"
	MsgPaymentFailure = "Payment failed. Please try again."
	OrdersPath        = "/dashboard/user/orders"
)

var (
	ErrSubmissionInFlight = errors.New("a payment is already being submitted")
	ErrNotReady           = errors.New("sign in, set an address and add items before paying")
)

// NonceSource is the payment widget. It turns the buyer's entered payment
// details into a one-time nonce.
type NonceSource interface {
	RequestPaymentMethod(ctx context.Context) (string, error)
}

type Payer interface {
	Pay(ctx context.Context, token, nonce string, cart []models.CartItem) (models.Order, error)
}

type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

type Navigator interface {
	Navigate(path string)
}

// Submitter runs one checkout at a time for a session and cart.
type Submitter struct {
	session   *Session
	cart      *Cart
	payer     Payer
	notifier  Notifier
	navigator Navigator
	log       *slog.Logger

	inFlight atomic.Bool
}

func NewSubmitter(session *Session, cart *Cart, payer Payer, notifier Notifier, navigator Navigator, log *slog.Logger) *Submitter {
	if log == nil {
		log = slog.Default()
	}
	return &Submitter{
		session:   session,
		cart:      cart,
		payer:     payer,
		notifier:  notifier,
		navigator: navigator,
		log:       log,
	}
}

func (s *Submitter) ready() bool {
	user, ok := s.session.User()
	return s.session.Authenticated() && ok &&
		strings.TrimSpace(user.Address) != "" &&
		s.cart.Len() > 0
}

// CanSubmit reports whether the pay control should be enabled.
func (s *Submitter) CanSubmit() bool {
	return !s.inFlight.Load() && s.ready()
}

// InFlight reports whether a submission is running.
func (s *Submitter) InFlight() bool {
	return s.inFlight.Load()
}

// Submit requests a nonce and pays for the current cart. On success the cart
// is cleared and the buyer is sent to the orders view. On failure the cart is
// kept so the buyer can retry.
func (s *Submitter) Submit(ctx context.Context, nonces NonceSource) (models.Order, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.Order{}, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	if !s.ready() {
		return models.Order{}, ErrNotReady
	}

	order, err := s.pay(ctx, nonces)
	if err != nil {
		s.log.Error("payment failed", slog.Any("err", err))
		s.notifier.Failure(MsgPaymentFailure)
		return models.Order{}, err
	}

	if err := s.cart.Clear(); err != nil {
		s.log.Warn("clear cart after payment failed", slog.Any("err", err))
	}
	s.navigator.Navigate(OrdersPath)
	s.notifier.Success(MsgPaymentSuccess)
	return order, nil
}

func (s *Submitter) pay(ctx context.Context, nonces NonceSource) (models.Order, error) {
	nonce, err := nonces.RequestPaymentMethod(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("request payment method: %w", err)
	}
	return s.payer.Pay(ctx, s.session.Token(), nonce, s.cart.Items())
}
