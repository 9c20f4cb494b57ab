package models

import "time"

// Payment is the gateway's transaction result, stored on the order as returned.
type Payment struct {
	Success           bool      `json:"success" bson:"success"`
	TransactionID     string    `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	Status            string    `json:"status,omitempty" bson:"status,omitempty"`
	Type              string    `json:"type,omitempty" bson:"type,omitempty"`
	Amount            string    `json:"amount" bson:"amount"`
	Currency          string    `json:"currency,omitempty" bson:"currency,omitempty"`
	ProcessorResponse string    `json:"processorResponse,omitempty" bson:"processorResponse,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
