package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"order-service/models"
)

// OrderRepository defines order document access. Implementations must honor
// a session-bearing context so calls participate in the caller's
// transaction.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// MarkPaid flips paymentStatus to Paid for the order holding the given
	// gateway order id and returns the updated document.
	MarkPaid(ctx context.Context, razorpayOrderID, razorpayPaymentID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, shippedAt, deliveredAt *time.Time) error
	// ReplaceItems overwrites the order's line items, flipping the
	// soft-delete flag when the list runs empty.
	ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.OrderItem, isDeleted bool) error
	FindPaidByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.UserOrderedProduct, int64, error)
	ListAll(ctx context.Context, page, limit int) ([]models.OrderListRow, int64, error)
}

// CatalogRepository covers the two stock representations. Decrement methods
// are guarded against driving stock negative and report how many documents
// matched; zero matches means either a missing entity or insufficient stock.
type CatalogRepository interface {
	FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ProductExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	DecrementProductStock(ctx context.Context, id primitive.ObjectID, qty int) (int64, error)
	IncrementProductStock(ctx context.Context, id primitive.ObjectID, qty int) (int64, error)
	CombinationExists(ctx context.Context, combinationID primitive.ObjectID) (bool, error)
	DecrementCombinationStock(ctx context.Context, combinationID primitive.ObjectID, qty int) (int64, error)
	IncrementCombinationStock(ctx context.Context, combinationID primitive.ObjectID, qty int) (int64, error)
}

type CancellationRepository interface {
	FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.CancelledOrder, error)
	Insert(ctx context.Context, record *models.CancelledOrder) error
	AppendItems(ctx context.Context, orderID primitive.ObjectID, items []models.CancelledItem, refundDelta float64, reason string) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CancelledOrder, error)
	MarkProcessed(ctx context.Context, id primitive.ObjectID) error
	SetRefundStatus(ctx context.Context, id primitive.ObjectID, status models.RefundStatus, transactionID string) error
	List(ctx context.Context, page, limit int) ([]models.CancelledOrder, int64, error)
}

type ReturnRepository interface {
	Insert(ctx context.Context, record *models.ReturnedOrder) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReturnedOrder, error)
	MarkInspected(ctx context.Context, id primitive.ObjectID) error
	SetRefundStatus(ctx context.Context, id primitive.ObjectID, status models.RefundStatus, transactionID string) error
	List(ctx context.Context, page, limit int) ([]models.ReturnedOrder, int64, error)
}
