package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/google/uuid"
)

// Nonces understood by Offline, named after the Braintree sandbox test nonces.
const (
	NonceValid             = "fake-valid-nonce"
	NonceProcessorDeclined = "fake-processor-declined-visa-nonce"
	NonceGatewayRejected   = "fake-gateway-rejected-nonce"
)

var ErrGatewayRejected = errors.New("gateway rejected the payment method")

// Offline approves payments without a network round trip. It backs local
// development and the end-to-end tests.
type Offline struct {
	Currency string
}

func (o Offline) ClientToken(ctx context.Context) (string, error) {
	return "offline-" + uuid.NewString(), nil
}

func (o Offline) Sale(ctx context.Context, req SaleRequest) (models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return models.Payment{}, err
	}
	if strings.Contains(req.Nonce, "gateway-rejected") {
		return models.Payment{}, ErrGatewayRejected
	}

	payment := models.Payment{
		TransactionID: strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		Type:          "sale",
		Amount:        req.Amount.StringFixed(2),
		Currency:      o.currency(),
		CreatedAt:     time.Now().UTC(),
	}
	if strings.Contains(req.Nonce, "declined") {
		payment.Status = "processor_declined"
		payment.ProcessorResponse = "Do Not Honor"
		return payment, &DeclinedError{Payment: payment}
	}

	payment.Status = "authorized"
	if req.SubmitForSettlement {
		payment.Status = "submitted_for_settlement"
	}
	payment.ProcessorResponse = "Approved"
	payment.Success = true
	return payment, nil
}

func (o Offline) currency() string {
	if o.Currency == "" {
		return "USD"
	}
	return o.Currency
}
