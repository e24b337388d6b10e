package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/cache"
	"order-service/database"
	"order-service/kafka"
	"order-service/models"
	"order-service/payments"
	"order-service/repository"
)

type OrderItemInput struct {
	ProductID            string  `json:"product_id" binding:"required"`
	VariantCombinationID string  `json:"variant_combination_id,omitempty"`
	Quantity             int     `json:"quantity" binding:"required,min=1"`
	PricePerUnit         float64 `json:"price_per_unit" binding:"required,gt=0"`
	TotalPrice           float64 `json:"total_price" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	OrderedItems    []OrderItemInput       `json:"orderedItems" binding:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod" binding:"required"`
	Subtotal        float64                `json:"subtotal" binding:"required,gt=0"`
	Tax             float64                `json:"tax" binding:"gte=0"`
	DeliveryCharge  float64                `json:"deliveryCharge" binding:"gte=0"`
}

type CreateOrderResult struct {
	OrderID       string                 `json:"order_id"`
	OrderNumber   string                 `json:"order_number"`
	RazorpayOrder *payments.GatewayOrder `json:"razorpayOrder"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// adminTransitions is the one allowed action per order status. The
// lifecycle is strictly linear; anything else is rejected.
var adminTransitions = map[models.OrderStatus]string{
	models.OrderStatusPending:   "confirmed",
	models.OrderStatusConfirmed: "shipped",
	models.OrderStatusShipped:   "delivered",
}

type OrderService struct {
	orders    repository.OrderRepository
	catalog   repository.CatalogRepository
	ledger    *StockLedger
	gateway   payments.Gateway
	txn       database.TxnRunner
	events    *kafka.Producer
	cache     *cache.OrderCache
	logger    *zap.Logger
	keySecret string
	currency  string
}

func NewOrderService(
	orders repository.OrderRepository,
	catalog repository.CatalogRepository,
	ledger *StockLedger,
	gateway payments.Gateway,
	txn database.TxnRunner,
	events *kafka.Producer,
	orderCache *cache.OrderCache,
	logger *zap.Logger,
	keySecret, currency string,
) *OrderService {
	return &OrderService{
		orders:    orders,
		catalog:   catalog,
		ledger:    ledger,
		gateway:   gateway,
		txn:       txn,
		events:    events,
		cache:     orderCache,
		logger:    logger,
		keySecret: keySecret,
		currency:  currency,
	}
}

// CreateOrder validates stock availability, opens a gateway order for the
// computed total and persists the order as Pending/Pending. Stock is NOT
// decremented here; that happens on payment verification.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*CreateOrderResult, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user id")
	}
	if len(req.OrderedItems) == 0 {
		return nil, apperrors.Validation("No ordered items provided")
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid payment method: %s", req.PaymentMethod))
	}

	items := make([]models.OrderItem, 0, len(req.OrderedItems))
	for _, in := range req.OrderedItems {
		item, err := s.buildItem(in)
		if err != nil {
			return nil, err
		}

		// Read-only availability check; the authoritative guarded
		// decrement runs at payment verification time.
		product, err := s.catalog.FindProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperrors.NotFound(fmt.Sprintf("Product not found: %s", in.ProductID))
			}
			return nil, apperrors.Internal("Failed to load product", err)
		}
		if product.Stock < item.Quantity {
			return nil, apperrors.InsufficientStock(fmt.Sprintf("Insufficient stock for product: %s", in.ProductID))
		}
		items = append(items, item)
	}

	totalAmount := req.Subtotal + req.Tax + req.DeliveryCharge

	gatewayOrder, err := s.gateway.CreateOrder(ctx,
		toMinorUnits(totalAmount),
		s.currency,
		fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
	)
	if err != nil {
		return nil, apperrors.External("Failed to create payment gateway order", err)
	}

	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          userOID,
		OrderedItems:    items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		OrderStatus:     models.OrderStatusPending,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		DeliveryCharge:  req.DeliveryCharge,
		TotalAmount:     totalAmount,
		RazorpayOrderID: gatewayOrder.ID,
		Currency:        gatewayOrder.Currency,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		// Order numbers are millisecond timestamps plus random suffix;
		// a collision is vanishingly rare but recoverable.
		if mongo.IsDuplicateKeyError(err) {
			order.OrderNumber = generateOrderNumber()
			err = s.orders.Insert(ctx, order)
		}
		if err != nil {
			return nil, apperrors.Internal("Failed to persist order", err)
		}
	}

	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID),
		zap.Float64("total_amount", totalAmount),
	)

	return &CreateOrderResult{
		OrderID:       order.ID.Hex(),
		OrderNumber:   order.OrderNumber,
		RazorpayOrder: gatewayOrder,
	}, nil
}

// VerifyPayment checks the gateway callback signature and, inside one
// transaction, marks the order paid and decrements both stock
// representations. A signature mismatch mutates nothing.
func (s *OrderService) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*models.Order, error) {
	if !payments.VerifySignature(s.keySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, apperrors.SignatureMismatch("Invalid payment signature")
	}

	var order *models.Order
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.MarkPaid(ctx, req.RazorpayOrderID, req.RazorpayPaymentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperrors.NotFound("Order not found for verification")
			}
			return apperrors.Internal("Failed to update payment status", err)
		}

		deltas := make([]StockDelta, 0, len(order.OrderedItems))
		for _, item := range order.OrderedItems {
			deltas = append(deltas, StockDelta{
				ProductID:            item.ProductID,
				VariantCombinationID: item.VariantCombinationID,
				Quantity:             item.Quantity,
			})
		}
		return s.ledger.Apply(ctx, deltas, MissingFail)
	})
	if err != nil {
		// The gateway has already captured the payment at this point; a
		// failed decrement leaves money taken with no stock movement.
		// Surfacing the error for reconciliation is the documented
		// behavior, there is no automatic compensation.
		s.logger.Error("Payment verification failed after capture",
			zap.String("razorpay_order_id", req.RazorpayOrderID),
			zap.Error(err),
		)
		return nil, err
	}

	s.cache.Invalidate(ctx, order.ID.Hex())
	s.events.PublishOrderEvent(ctx, models.OrderEvent{
		Type:      models.EventPaymentVerified,
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID.Hex(),
		Amount:    order.TotalAmount,
		Currency:  order.Currency,
		Timestamp: time.Now().UTC(),
	})

	s.logger.Info("Payment verified",
		zap.String("order_number", order.OrderNumber),
		zap.String("razorpay_payment_id", req.RazorpayPaymentID),
	)
	return order, nil
}

// HandleAdminOrderAction advances the order status along the fixed
// Pending -> Confirmed -> Shipped -> Delivered chain.
func (s *OrderService) HandleAdminOrderAction(ctx context.Context, orderID, action string) (models.OrderStatus, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return "", apperrors.Validation("Invalid order id")
	}

	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", apperrors.NotFound("Order not found")
		}
		return "", apperrors.Internal("Failed to load order", err)
	}

	expected, ok := adminTransitions[order.OrderStatus]
	if !ok || !strings.EqualFold(action, expected) {
		return "", apperrors.InvalidAction(fmt.Sprintf(
			"Invalid action %q for current order status %q. Expected action: %q",
			action, order.OrderStatus, expected,
		))
	}

	var next models.OrderStatus
	var shippedAt, deliveredAt *time.Time
	now := time.Now().UTC()
	switch strings.ToLower(action) {
	case "confirmed":
		next = models.OrderStatusConfirmed
	case "shipped":
		next = models.OrderStatusShipped
		shippedAt = &now
	case "delivered":
		next = models.OrderStatusDelivered
		deliveredAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, oid, next, shippedAt, deliveredAt); err != nil {
		return "", apperrors.Internal("Failed to update order status", err)
	}

	s.cache.Invalidate(ctx, orderID)
	s.events.PublishOrderEvent(ctx, models.OrderEvent{
		Type:      models.EventStatusChanged,
		OrderID:   orderID,
		UserID:    order.UserID.Hex(),
		Timestamp: now,
	})
	return next, nil
}

type PagedUserOrders struct {
	Rows       []models.UserOrderedProduct `json:"data"`
	Total      int64                       `json:"total"`
	Page       int                         `json:"currentPage"`
	TotalPages int64                       `json:"totalPages"`
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) (*PagedUserOrders, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user id")
	}
	rows, total, err := s.orders.FindPaidByUser(ctx, userOID, page, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch user orders", err)
	}
	return &PagedUserOrders{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

type PagedOrderList struct {
	Rows       []models.OrderListRow `json:"data"`
	Total      int64                 `json:"totalOrders"`
	Page       int                   `json:"currentPage"`
	TotalPages int64                 `json:"totalPages"`
}

func (s *OrderService) ListAllOrders(ctx context.Context, page, limit int) (*PagedOrderList, error) {
	rows, total, err := s.orders.ListAll(ctx, page, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to list orders", err)
	}
	return &PagedOrderList{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *OrderService) GetOrderDetails(ctx context.Context, orderID string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.Validation("Invalid order id")
	}

	var cached models.Order
	if s.cache.Get(ctx, orderID, &cached) {
		return &cached, nil
	}

	order, err := s.orders.FindActiveByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal("Failed to load order", err)
	}

	s.cache.Set(ctx, orderID, order)
	return order, nil
}

// GenerateOrderBill shapes a stored order into an invoice projection. The
// invoice number reuses the timestamp segment of the order number.
func (s *OrderService) GenerateOrderBill(ctx context.Context, orderID string) (*models.OrderBill, error) {
	order, err := s.GetOrderDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}

	invoice := "INV-" + order.OrderNumber
	if parts := strings.Split(order.OrderNumber, "-"); len(parts) >= 2 {
		invoice = "INV-" + parts[1]
	}

	bill := &models.OrderBill{
		InvoiceNumber:  invoice,
		OrderDate:      order.CreatedAt,
		Shipping:       order.ShippingAddress,
		PaymentMethod:  order.PaymentMethod,
		PaymentStatus:  order.PaymentStatus,
		Currency:       order.Currency,
		Subtotal:       order.Subtotal,
		Tax:            order.Tax,
		DeliveryCharge: order.DeliveryCharge,
		TotalAmount:    order.TotalAmount,
		OrderStatus:    order.OrderStatus,
		ShippedAt:      order.ShippedAt,
		DeliveredAt:    order.DeliveredAt,
	}
	for i, item := range order.OrderedItems {
		bill.Items = append(bill.Items, models.BillItem{
			SrNo:      i + 1,
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			UnitPrice: item.PricePerUnit,
			Total:     item.TotalPrice,
		})
	}
	return bill, nil
}

func (s *OrderService) buildItem(in OrderItemInput) (models.OrderItem, error) {
	productOID, err := primitive.ObjectIDFromHex(in.ProductID)
	if err != nil {
		return models.OrderItem{}, apperrors.Validation(fmt.Sprintf("Invalid ordered item, bad product id: %s", in.ProductID))
	}
	if in.Quantity <= 0 {
		return models.OrderItem{}, apperrors.Validation(fmt.Sprintf("Invalid ordered item, quantity must be positive for product: %s", in.ProductID))
	}

	item := models.OrderItem{
		ProductID:    productOID,
		Quantity:     in.Quantity,
		PricePerUnit: in.PricePerUnit,
		TotalPrice:   in.TotalPrice,
	}
	if in.VariantCombinationID != "" {
		combOID, err := primitive.ObjectIDFromHex(in.VariantCombinationID)
		if err != nil {
			return models.OrderItem{}, apperrors.Validation(fmt.Sprintf("Invalid ordered item, bad variant combination id: %s", in.VariantCombinationID))
		}
		item.VariantCombinationID = &combOID
	}
	return item, nil
}

// generateOrderNumber builds a human-readable order number from the current
// millisecond timestamp and a 6-char random hex suffix.
func generateOrderNumber() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(buf)))
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
