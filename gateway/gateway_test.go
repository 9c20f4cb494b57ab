package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGateway lets each test decide what the processor does.
type MockGateway struct {
	ClientTokenFunc func(ctx context.Context) (string, error)
	SaleFunc        func(ctx context.Context, req SaleRequest) (models.Payment, error)
}

func (m *MockGateway) ClientToken(ctx context.Context) (string, error) {
	return m.ClientTokenFunc(ctx)
}

func (m *MockGateway) Sale(ctx context.Context, req SaleRequest) (models.Payment, error) {
	return m.SaleFunc(ctx, req)
}

func TestNormalizeSale(t *testing.T) {
	req := SaleRequest{Amount: decimal.NewFromInt(30), Nonce: "n", SubmitForSettlement: true}

	t.Run("success passes through", func(t *testing.T) {
		want := models.Payment{Success: true, TransactionID: "tx1", Amount: "30.00"}
		g := Normalize(&MockGateway{SaleFunc: func(ctx context.Context, got SaleRequest) (models.Payment, error) {
			assert.Equal(t, req, got)
			return want, nil
		}}, time.Second)

		payment, err := g.Sale(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, want, payment)
	})

	t.Run("unsuccessful result becomes DeclinedError", func(t *testing.T) {
		result := models.Payment{Success: false, Status: "processor_declined"}
		g := Normalize(&MockGateway{SaleFunc: func(ctx context.Context, _ SaleRequest) (models.Payment, error) {
			return result, nil
		}}, time.Second)

		payment, err := g.Sale(context.Background(), req)
		var declined *DeclinedError
		require.ErrorAs(t, err, &declined)
		assert.Equal(t, result, declined.Payment)
		assert.Equal(t, models.Payment{}, payment)
	})

	t.Run("returned error", func(t *testing.T) {
		boom := errors.New("boom")
		g := Normalize(&MockGateway{SaleFunc: func(ctx context.Context, _ SaleRequest) (models.Payment, error) {
			return models.Payment{Success: true}, boom
		}}, time.Second)

		payment, err := g.Sale(context.Background(), req)
		assert.ErrorIs(t, err, boom)
		assert.False(t, payment.Success)
	})

	t.Run("panic becomes error", func(t *testing.T) {
		g := Normalize(&MockGateway{SaleFunc: func(ctx context.Context, _ SaleRequest) (models.Payment, error) {
			panic("socket closed")
		}}, time.Second)

		payment, err := g.Sale(context.Background(), req)
		assert.ErrorIs(t, err, ErrPanic)
		assert.Contains(t, err.Error(), "socket closed")
		assert.False(t, payment.Success)
	})

	t.Run("deadline becomes ErrTimeout", func(t *testing.T) {
		g := Normalize(&MockGateway{SaleFunc: func(ctx context.Context, _ SaleRequest) (models.Payment, error) {
			<-ctx.Done()
			return models.Payment{}, ctx.Err()
		}}, 10*time.Millisecond)

		_, err := g.Sale(context.Background(), req)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNormalizeClientToken(t *testing.T) {
	g := Normalize(&MockGateway{ClientTokenFunc: func(ctx context.Context) (string, error) {
		return "token123", nil
	}}, 0)
	token, err := g.ClientToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token123", token)

	fail := errors.New("token fail")
	g = Normalize(&MockGateway{ClientTokenFunc: func(ctx context.Context) (string, error) {
		return "", fail
	}}, time.Second)
	_, err = g.ClientToken(context.Background())
	assert.ErrorIs(t, err, fail)
}

func TestOffline(t *testing.T) {
	g, err := New(BraintreeConfig{Environment: "offline"}, time.Second)
	require.NoError(t, err)

	payment, err := g.Sale(context.Background(), SaleRequest{
		Amount:              decimal.RequireFromString("30"),
		Nonce:               NonceValid,
		SubmitForSettlement: true,
	})
	require.NoError(t, err)
	assert.True(t, payment.Success)
	assert.Equal(t, "30.00", payment.Amount)
	assert.Equal(t, "submitted_for_settlement", payment.Status)
	assert.NotEmpty(t, payment.TransactionID)

	_, err = g.Sale(context.Background(), SaleRequest{Nonce: NonceProcessorDeclined})
	var declined *DeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "processor_declined", declined.Payment.Status)

	_, err = g.Sale(context.Background(), SaleRequest{Nonce: NonceGatewayRejected})
	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestBraintreeHelpers(t *testing.T) {
	assert.Equal(t, "30.00", toBraintreeDecimal(decimal.RequireFromString("30")).String())
	assert.Equal(t, "10.01", toBraintreeDecimal(decimal.RequireFromString("10.005")).String())

	assert.True(t, successfulStatus("submitted_for_settlement"))
	assert.True(t, successfulStatus("authorized"))
	assert.False(t, successfulStatus("processor_declined"))
	assert.False(t, successfulStatus("gateway_rejected"))

	_, err := NewBraintree(BraintreeConfig{Environment: "sandbox"})
	assert.Error(t, err)
	_, err = braintreeEnvironment("mars")
	assert.Error(t, err)
}
