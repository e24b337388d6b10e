package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RefundStatus string

const (
	RefundStatusPending     RefundStatus = "Pending"
	RefundStatusProcessed   RefundStatus = "Processed"
	RefundStatusNotRequired RefundStatus = "NotRequired"
)

func (s RefundStatus) Valid() bool {
	switch s {
	case RefundStatusPending, RefundStatusProcessed, RefundStatusNotRequired:
		return true
	}
	return false
}

// CancelledItem is the snapshot of an order line item at cancellation time.
type CancelledItem struct {
	ProductID            primitive.ObjectID  `bson:"product_id" json:"product_id"`
	VariantCombinationID *primitive.ObjectID `bson:"variant_combination_id,omitempty" json:"variant_combination_id,omitempty"`
	Quantity             int                 `bson:"quantity" json:"quantity"`
	PricePerUnit         float64             `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice           float64             `bson:"total_price" json:"total_price"`
}

// CancelledOrder holds every cancellation against one order. There is at
// most one document per order; repeated cancellations append to
// CancelledItems and add to TotalRefundAmount.
type CancelledOrder struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID            primitive.ObjectID `bson:"orderId" json:"orderId"`
	UserID             primitive.ObjectID `bson:"user_id" json:"user_id"`
	CancelledItems     []CancelledItem    `bson:"cancelledItems" json:"cancelledItems"`
	CancellationReason string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledAt        time.Time          `bson:"cancelledAt" json:"cancelledAt"`
	RefundStatus       RefundStatus       `bson:"refundStatus" json:"refundStatus"`
	TotalRefundAmount  float64            `bson:"totalRefundAmount" json:"totalRefundAmount"`
	TransactionID      string             `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	IsProcessed        bool               `bson:"isProcessed" json:"isProcessed"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
