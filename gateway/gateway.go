// Package gateway talks to the payment processor. Every adapter is wrapped by
// Normalize so callers see one outcome shape: a successful Payment with a nil
// error, or an error.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/shopspring/decimal"
)

var (
	ErrTimeout = errors.New("payment gateway timed out")
	ErrPanic   = errors.New("payment gateway client panicked")
)

// SaleRequest asks the gateway to charge a tokenized payment method.
type SaleRequest struct {
	Amount              decimal.Decimal
	Nonce               string
	SubmitForSettlement bool
}

type Gateway interface {
	// ClientToken issues the credential the browser widget uses to tokenize cards.
	ClientToken(ctx context.Context) (string, error)
	// Sale submits a transaction.
	Sale(ctx context.Context, req SaleRequest) (models.Payment, error)
}

// DeclinedError is a transaction the gateway answered but did not approve.
type DeclinedError struct {
	Payment models.Payment
}

func (e *DeclinedError) Error() string {
	if e.Payment.ProcessorResponse != "" {
		return fmt.Sprintf("payment declined (%s): %s", e.Payment.Status, e.Payment.ProcessorResponse)
	}
	return fmt.Sprintf("payment declined (%s)", e.Payment.Status)
}

type normalized struct {
	next    Gateway
	timeout time.Duration
}

// Normalize bounds each call by timeout, turns client panics into errors, and
// reports unsuccessful payments as *DeclinedError.
func Normalize(g Gateway, timeout time.Duration) Gateway {
	return &normalized{next: g, timeout: timeout}
}

func (n *normalized) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, n.timeout)
}

func (n *normalized) ClientToken(ctx context.Context) (token string, err error) {
	ctx, cancel := n.withTimeout(ctx)
	defer cancel()
	defer recoverInto(&err)

	token, err = n.next.ClientToken(ctx)
	if err != nil {
		return "", classify(ctx, err)
	}
	return token, nil
}

func (n *normalized) Sale(ctx context.Context, req SaleRequest) (payment models.Payment, err error) {
	ctx, cancel := n.withTimeout(ctx)
	defer cancel()
	defer func() {
		if err != nil {
			payment = models.Payment{}
		}
	}()
	defer recoverInto(&err)

	payment, err = n.next.Sale(ctx, req)
	if err != nil {
		var declined *DeclinedError
		if errors.As(err, &declined) {
			return payment, err
		}
		return payment, classify(ctx, err)
	}
	if !payment.Success {
		return payment, &DeclinedError{Payment: payment}
	}
	return payment, nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrPanic, r)
	}
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
