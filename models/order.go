package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentMethod string

const (
	PaymentMethodCOD        PaymentMethod = "COD"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCard       PaymentMethod = "Card"
	PaymentMethodNetBanking PaymentMethod = "NetBanking"
	PaymentMethodWallet     PaymentMethod = "Wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetBanking, PaymentMethodWallet:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

// ShippingAddress is embedded in the order document; orders keep their own
// copy so later address edits don't rewrite history.
type ShippingAddress struct {
	FullName     string `bson:"fullName" json:"fullName" binding:"required"`
	Mobile       string `bson:"mobile" json:"mobile" binding:"required"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1" binding:"required"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city" binding:"required"`
	State        string `bson:"state" json:"state" binding:"required"`
	PostalCode   string `bson:"postalCode" json:"postalCode" binding:"required"`
	Country      string `bson:"country" json:"country" binding:"required"`
}

// OrderItem is a single product-and-quantity entry within an order.
type OrderItem struct {
	ProductID            primitive.ObjectID  `bson:"product_id" json:"product_id"`
	VariantCombinationID *primitive.ObjectID `bson:"variant_combination_id,omitempty" json:"variant_combination_id,omitempty"`
	Quantity             int                 `bson:"quantity" json:"quantity"`
	PricePerUnit         float64             `bson:"price_per_unit" json:"price_per_unit"`
	TotalPrice           float64             `bson:"total_price" json:"total_price"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber       string             `bson:"order_number" json:"order_number"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrderedItems      []OrderItem        `bson:"orderedItems" json:"orderedItems"`
	ShippingAddress   ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod     PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus     PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus       OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	Subtotal          float64            `bson:"subtotal" json:"subtotal"`
	Tax               float64            `bson:"tax" json:"tax"`
	DeliveryCharge    float64            `bson:"deliveryCharge" json:"deliveryCharge"`
	TotalAmount       float64            `bson:"totalAmount" json:"totalAmount"`
	RazorpayOrderID   string             `bson:"razorpayOrderId,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string             `bson:"razorpayPaymentId,omitempty" json:"razorpayPaymentId,omitempty"`
	Currency          string             `bson:"currency" json:"currency"`
	ShippedAt         *time.Time         `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	IsDeleted         bool               `bson:"isDeleted" json:"isDeleted"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FindItem returns a pointer into OrderedItems for the given product, or nil.
func (o *Order) FindItem(productID primitive.ObjectID) *OrderItem {
	for i := range o.OrderedItems {
		if o.OrderedItems[i].ProductID == productID {
			return &o.OrderedItems[i]
		}
	}
	return nil
}
