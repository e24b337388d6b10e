package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReturnedOrder records one post-delivery return request for one line item.
// Unlike cancellations, every return creates its own document.
type ReturnedOrder struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderID       primitive.ObjectID  `bson:"orderId" json:"orderId"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"user_id"`
	ProductID     primitive.ObjectID  `bson:"product_id" json:"product_id"`
	VariantID     *primitive.ObjectID `bson:"variant_id,omitempty" json:"variant_id,omitempty"`
	Quantity      int                 `bson:"quantity" json:"quantity"`
	PricePerUnit  float64             `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice    float64             `bson:"total_price" json:"total_price"`
	ReturnReason  string              `bson:"returnReason,omitempty" json:"returnReason,omitempty"`
	ReturnedAt    time.Time           `bson:"returnedAt" json:"returnedAt"`
	RefundStatus  RefundStatus        `bson:"refundStatus" json:"refundStatus"`
	RefundedAt    *time.Time          `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	TransactionID string              `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	IsInspected   bool                `bson:"isInspected" json:"isInspected"`
	ReturnImages  []string            `bson:"returnImages" json:"returnImages"`
	ImageKeys     []string            `bson:"imageKeys" json:"imageKeys"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}
