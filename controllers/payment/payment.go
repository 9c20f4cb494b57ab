package paymentControllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/checkout"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/gin-gonic/gin"
)

// Checkouter is the part of checkout.Service the handlers use.
type Checkouter interface {
	ClientToken(ctx context.Context) (string, error)
	Checkout(ctx context.Context, req checkout.Request) (models.Order, error)
}

type PaymentRequest struct {
	Nonce string            `json:"nonce"`
	Cart  []models.CartItem `json:"cart"`
}

type PaymentResponse struct {
	OK    bool         `json:"ok"`
	Order models.Order `json:"order"`
}

// GET /braintree/token
func TokenHandler(svc Checkouter, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := svc.ClientToken(c.Request.Context())
		if err != nil {
			log.Error("client token failed", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error generating client token",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientToken": token})
	}
}

// POST /braintree/payment
func PaymentHandler(svc Checkouter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment request", "error": err.Error()})
			return
		}

		order, err := svc.Checkout(c.Request.Context(), checkout.Request{
			Buyer: c.GetString(middleware.UserIDKey),
			Nonce: req.Nonce,
			Cart:  req.Cart,
		})

		var persistErr *checkout.PersistError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, PaymentResponse{OK: true, Order: order})
		case errors.Is(err, checkout.ErrMissingNonce):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment nonce is required"})
		case errors.Is(err, checkout.ErrMissingBuyer):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized Access"})
		case errors.As(err, &persistErr):
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":       false,
				"message":       "Payment captured but order was not recorded",
				"error":         persistErr.Err.Error(),
				"transactionId": persistErr.Payment.TransactionID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Payment failed",
				"error":   gatewayError(err),
			})
		}
	}
}

// gatewayError is the gateway's own message without the checkout prefix.
func gatewayError(err error) string {
	var payErr *checkout.PaymentError
	if errors.As(err, &payErr) {
		return payErr.Err.Error()
	}
	return err.Error()
}
