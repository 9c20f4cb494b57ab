package orderControllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
)

// Store is what the order handlers read and write.
type Store interface {
	store.OrderStore
	store.Resolver
}

// StatusNotifier hears about status changes after they are stored.
type StatusNotifier interface {
	StatusChanged(order models.Order)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func listOrders(ctx context.Context, s Store, filter store.OrderFilter) ([]models.OrderDetail, error) {
	orders, err := s.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return store.Populate(ctx, s, orders)
}

// GET /auth/orders
func GetOrdersHandler(s Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer := c.GetString(middleware.UserIDKey)
		orders, err := listOrders(c.Request.Context(), s, store.OrderFilter{Buyer: buyer})
		if err != nil {
			log.Error("get orders failed", slog.String("buyer", buyer), slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error While Getting Orders",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /auth/all-orders
func GetAllOrdersHandler(s Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := listOrders(c.Request.Context(), s, store.OrderFilter{})
		if err != nil {
			log.Error("get all orders failed", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error While Getting Orders",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// PUT /auth/order-status/:orderId
func UpdateOrderStatusHandler(s Store, policy models.TransitionPolicy, notify StatusNotifier, log *slog.Logger) gin.HandlerFunc {
	if policy == nil {
		policy = models.AnyTransition
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		orderID := c.Param("orderId")

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Status is required"})
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		current, err := s.GetOrder(ctx, orderID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
			return
		}
		if err != nil {
			updateFailed(c, log, orderID, err)
			return
		}
		if err := policy(current.Status, status); err != nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
			return
		}

		updated, err := s.UpdateOrderStatus(ctx, orderID, status)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
			return
		}
		if err != nil {
			updateFailed(c, log, orderID, err)
			return
		}
		log.Info("order status updated",
			slog.String("order_id", orderID),
			slog.String("from", string(current.Status)),
			slog.String("to", string(status)),
		)
		if notify != nil {
			notify.StatusChanged(updated)
		}

		details, err := store.Populate(ctx, s, []models.Order{updated})
		if err != nil {
			updateFailed(c, log, orderID, err)
			return
		}
		c.JSON(http.StatusOK, details[0])
	}
}

func updateFailed(c *gin.Context, log *slog.Logger, orderID string, err error) {
	log.Error("update order status failed", slog.String("order_id", orderID), slog.Any("err", err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Error While Updating Order",
		"error":   err.Error(),
	})
}
