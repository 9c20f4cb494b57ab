package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/braintree-go/braintree-go"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/shopspring/decimal"
)

// BraintreeConfig holds merchant credentials.
type BraintreeConfig struct {
	Environment string // sandbox, production or development
	MerchantID  string
	PublicKey   string
	PrivateKey  string
}

// Braintree adapts braintree-go to Gateway.
type Braintree struct {
	bt *braintree.Braintree
}

func NewBraintree(cfg BraintreeConfig) (*Braintree, error) {
	if cfg.MerchantID == "" || cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("braintree configuration missing")
	}
	env, err := braintreeEnvironment(cfg.Environment)
	if err != nil {
		return nil, err
	}
	return &Braintree{bt: braintree.New(env, cfg.MerchantID, cfg.PublicKey, cfg.PrivateKey)}, nil
}

func braintreeEnvironment(name string) (braintree.Environment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sandbox":
		return braintree.Sandbox, nil
	case "production":
		return braintree.Production, nil
	case "development":
		return braintree.Development, nil
	default:
		return braintree.Environment{}, fmt.Errorf("unknown braintree environment %q", name)
	}
}

func (b *Braintree) ClientToken(ctx context.Context) (string, error) {
	token, err := b.bt.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("braintree client token: %w", err)
	}
	return token, nil
}

func (b *Braintree) Sale(ctx context.Context, req SaleRequest) (models.Payment, error) {
	tx, err := b.bt.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             toBraintreeDecimal(req.Amount),
		PaymentMethodNonce: req.Nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: req.SubmitForSettlement,
		},
	})
	if err != nil {
		return models.Payment{}, fmt.Errorf("braintree sale: %w", err)
	}
	payment := paymentFromTransaction(tx)
	if !payment.Success {
		return payment, &DeclinedError{Payment: payment}
	}
	return payment, nil
}

// toBraintreeDecimal rounds to cents; the gateway rejects more precision.
func toBraintreeDecimal(amount decimal.Decimal) *braintree.Decimal {
	return braintree.NewDecimal(amount.Round(2).Shift(2).IntPart(), 2)
}

func paymentFromTransaction(tx *braintree.Transaction) models.Payment {
	payment := models.Payment{
		TransactionID:     tx.Id,
		Status:            string(tx.Status),
		Type:              tx.Type,
		Currency:          tx.CurrencyISOCode,
		ProcessorResponse: tx.ProcessorResponseText,
	}
	if tx.Amount != nil {
		payment.Amount = tx.Amount.String()
	}
	if tx.CreatedAt != nil {
		payment.CreatedAt = tx.CreatedAt.UTC()
	} else {
		payment.CreatedAt = time.Now().UTC()
	}
	payment.Success = successfulStatus(payment.Status)
	return payment
}

// successfulStatus reports whether the transaction moved toward capture.
func successfulStatus(status string) bool {
	switch status {
	case "authorized", "submitted_for_settlement", "settling", "settlement_pending", "settled":
		return true
	default:
		return false
	}
}
