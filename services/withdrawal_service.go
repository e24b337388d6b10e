package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/cache"
	"order-service/database"
	"order-service/kafka"
	"order-service/models"
	"order-service/repository"
)

// WithdrawalStatus selects the branch an item withdrawal takes.
type WithdrawalStatus string

const (
	WithdrawalCancelled WithdrawalStatus = "Cancelled"
	WithdrawalReturned  WithdrawalStatus = "Returned"
)

type WithdrawItemRequest struct {
	OrderID   string
	ProductID string
	UserID    string
	Status    WithdrawalStatus
	Reason    string
	Images    []EvidenceImage
}

// WithdrawalService removes a line item from a live order and hands the
// snapshot to the cancellation or return flow. The order mutation and the
// cancellation/return record are written in one transaction; neither may
// persist without the other.
type WithdrawalService struct {
	orders        repository.OrderRepository
	cancellations *CancellationService
	returns       *ReturnService
	txn           database.TxnRunner
	events        *kafka.Producer
	cache         *cache.OrderCache
	logger        *zap.Logger
}

func NewWithdrawalService(
	orders repository.OrderRepository,
	cancellations *CancellationService,
	returns *ReturnService,
	txn database.TxnRunner,
	events *kafka.Producer,
	orderCache *cache.OrderCache,
	logger *zap.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		orders:        orders,
		cancellations: cancellations,
		returns:       returns,
		txn:           txn,
		events:        events,
		cache:         orderCache,
		logger:        logger,
	}
}

func (s *WithdrawalService) WithdrawItem(ctx context.Context, req WithdrawItemRequest) error {
	if req.Status != WithdrawalCancelled && req.Status != WithdrawalReturned {
		return apperrors.Validation("Status must be Cancelled or Returned")
	}
	orderOID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return apperrors.Validation("Invalid orderId or productId")
	}
	productOID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return apperrors.Validation("Invalid orderId or productId")
	}
	userOID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return apperrors.Validation("Invalid user id")
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByID(ctx, orderOID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperrors.NotFound("Order not found")
			}
			return apperrors.Internal("Failed to load order", err)
		}

		if order.UserID != userOID {
			return apperrors.Unauthorized("User not authorized to modify this order")
		}

		switch req.Status {
		case WithdrawalCancelled:
			if order.OrderStatus != models.OrderStatusPending && order.OrderStatus != models.OrderStatusConfirmed {
				return apperrors.InvalidState("Only Pending or Confirmed orders can be cancelled")
			}
		case WithdrawalReturned:
			if order.OrderStatus != models.OrderStatusDelivered {
				return apperrors.InvalidState("Only Delivered orders can be returned")
			}
		}

		target := order.FindItem(productOID)
		if target == nil {
			return apperrors.NotFound("Product not found in order")
		}
		removed := *target

		remaining := make([]models.OrderItem, 0, len(order.OrderedItems)-1)
		for _, item := range order.OrderedItems {
			if item.ProductID != productOID {
				remaining = append(remaining, item)
			}
		}
		isDeleted := len(remaining) == 0

		if err := s.orders.ReplaceItems(ctx, order.ID, remaining, isDeleted); err != nil {
			return apperrors.Internal("Failed to update order items", err)
		}

		if req.Status == WithdrawalCancelled {
			return s.cancellations.CreateOrUpdate(ctx, CreateCancellationInput{
				OrderID: order.ID,
				UserID:  order.UserID,
				CancelledItems: []models.CancelledItem{{
					ProductID:            removed.ProductID,
					VariantCombinationID: removed.VariantCombinationID,
					Quantity:             removed.Quantity,
					PricePerUnit:         removed.PricePerUnit,
					TotalPrice:           removed.TotalPrice,
				}},
				CancellationReason: req.Reason,
			})
		}

		// Return branch: stock stays untouched until the goods pass
		// inspection, through a separate decision outside this flow.
		_, err = s.returns.Create(ctx, CreateReturnInput{
			OrderID:      order.ID,
			UserID:       order.UserID,
			ProductID:    removed.ProductID,
			VariantID:    removed.VariantCombinationID,
			Quantity:     removed.Quantity,
			PricePerUnit: removed.PricePerUnit,
			ReturnReason: req.Reason,
			Images:       req.Images,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, req.OrderID)

	eventType := models.EventItemCancelled
	if req.Status == WithdrawalReturned {
		eventType = models.EventItemReturned
	}
	s.events.PublishOrderEvent(ctx, models.OrderEvent{
		Type:      eventType,
		OrderID:   req.OrderID,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Timestamp: time.Now().UTC(),
	})

	s.logger.Info("Order item withdrawn",
		zap.String("order_id", req.OrderID),
		zap.String("product_id", req.ProductID),
		zap.String("status", string(req.Status)),
	)
	return nil
}
