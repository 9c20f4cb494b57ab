package models

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	// Order statuses (delivery lifecycle)
	OrderStatusNotProcessed OrderStatus = "Not Processed" // Paid, not yet picked up by staff
	OrderStatusProcessing   OrderStatus = "Processing"    // Being packed
	OrderStatusShipped      OrderStatus = "Shipped"       // Out for delivery
	OrderStatusDelivered    OrderStatus = "Delivered"     // Customer received the items
	OrderStatusCancelled    OrderStatus = "Cancelled"     // Cancelled by staff
)

var (
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrTransitionNotAllowed = errors.New("order status transition not allowed")
)

// OrderStatuses lists every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusNotProcessed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// Valid reports whether s is exactly one of the enumerated statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// ParseOrderStatus accepts exactly the enumerated spellings, the same set
// Validate accepts on create.
func ParseOrderStatus(status string) (OrderStatus, error) {
	if s := OrderStatus(status); s.Valid() {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
}

// TransitionPolicy decides whether an order may move from one status to another.
type TransitionPolicy func(from, to OrderStatus) error

// AnyTransition accepts every move, including leaving Delivered or Cancelled.
func AnyTransition(from, to OrderStatus) error {
	return nil
}

// StrictTransitions treats Delivered and Cancelled as terminal.
func StrictTransitions(from, to OrderStatus) error {
	if from == to {
		return nil
	}
	if from == OrderStatusDelivered || from == OrderStatusCancelled {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

// Order is the durable record of a paid checkout.
type Order struct {
	ID        string      `json:"_id" bson:"_id"`
	Products  []string    `json:"products" bson:"products"`
	Payment   Payment     `json:"payment" bson:"payment"`
	Buyer     string      `json:"buyer" bson:"buyer"`
	Status    OrderStatus `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// NewOrder builds an unsaved order for a confirmed payment.
func NewOrder(buyer string, products []string, payment Payment) Order {
	if products == nil {
		products = []string{}
	}
	return Order{
		Products: products,
		Payment:  payment,
		Buyer:    buyer,
		Status:   OrderStatusNotProcessed,
	}
}

// Validate is the schema check applied on direct creation.
func (o Order) Validate() error {
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	return nil
}

// Prepare fills the fields a store assigns at write time and validates the result.
func (o *Order) Prepare(id string, now time.Time) error {
	if o.ID == "" {
		o.ID = id
	}
	if o.Status == "" {
		o.Status = OrderStatusNotProcessed
	}
	if o.Products == nil {
		o.Products = []string{}
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return o.Validate()
}

// BuyerRef is the populated buyer of an order.
type BuyerRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// OrderDetail is an order with its buyer and products resolved.
type OrderDetail struct {
	ID        string       `json:"_id"`
	Products  []ProductRef `json:"products"`
	Payment   Payment      `json:"payment"`
	Buyer     BuyerRef     `json:"buyer"`
	Status    OrderStatus  `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
