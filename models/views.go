package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserOrderedProduct is one flattened line item of a user's paid orders,
// joined with catalog data for display.
type UserOrderedProduct struct {
	OrderID      primitive.ObjectID `bson:"order_id" json:"order_id"`
	ProductID    primitive.ObjectID `bson:"product_id" json:"product_id"`
	ProductName  string             `bson:"product_name,omitempty" json:"product_name,omitempty"`
	ProductImage string             `bson:"product_image,omitempty" json:"product_image,omitempty"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	PricePerUnit float64            `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice   float64            `bson:"total_price" json:"total_price"`
	OrderStatus  OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	OrderedAt    time.Time          `bson:"orderedAt" json:"orderedAt"`
	ShippedAt    *time.Time         `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt  *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// OrderListRow is one flattened line item in the admin order listing.
type OrderListRow struct {
	OrderID      primitive.ObjectID `bson:"order_id" json:"order_id"`
	OrderNumber  string             `bson:"order_number" json:"order_number"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProductName  string             `bson:"product_name,omitempty" json:"product_name,omitempty"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	PricePerUnit float64            `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice   float64            `bson:"total_price" json:"total_price"`
	OrderStatus  OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	TotalAmount  float64            `bson:"totalAmount" json:"totalAmount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	ShippedAt    *time.Time         `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt  *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// OrderBill is the invoice-shaped projection of a stored order.
type OrderBill struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	OrderDate     time.Time       `json:"orderDate"`
	Shipping      ShippingAddress `json:"shippingAddress"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Currency      string          `json:"currency"`
	Items         []BillItem      `json:"items"`
	Subtotal      float64         `json:"subtotal"`
	Tax           float64         `json:"tax"`
	DeliveryCharge float64        `json:"deliveryCharge"`
	TotalAmount   float64         `json:"totalAmount"`
	OrderStatus   OrderStatus     `json:"orderStatus"`
	ShippedAt     *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt   *time.Time      `json:"deliveredAt,omitempty"`
}

type BillItem struct {
	SrNo      int     `json:"srNo"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}
