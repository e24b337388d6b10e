package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/models"
	"order-service/repository"
)

// CreateCancellationInput is one batch of cancelled line-item snapshots for
// an order.
type CreateCancellationInput struct {
	OrderID            primitive.ObjectID
	UserID             primitive.ObjectID
	CancelledItems     []models.CancelledItem
	CancellationReason string
}

// CancellationService maintains the single CancelledOrder record per order
// and restores stock for every cancelled batch.
type CancellationService struct {
	cancellations repository.CancellationRepository
	ledger        *StockLedger
	logger        *zap.Logger
}

func NewCancellationService(cancellations repository.CancellationRepository, ledger *StockLedger, logger *zap.Logger) *CancellationService {
	return &CancellationService{cancellations: cancellations, ledger: ledger, logger: logger}
}

// CreateOrUpdate merges a cancellation batch into the order's CancelledOrder
// record, creating it on first cancellation, then restores stock for every
// item in the batch. Must run inside the caller's transaction: the merge and
// the stock restore commit or roll back together.
func (s *CancellationService) CreateOrUpdate(ctx context.Context, input CreateCancellationInput) error {
	if input.OrderID.IsZero() || input.UserID.IsZero() || len(input.CancelledItems) == 0 {
		return apperrors.Validation("Missing required fields or cancelledItems array is empty")
	}

	var refundAmount float64
	for _, item := range input.CancelledItems {
		if item.ProductID.IsZero() {
			return apperrors.Validation("Each cancelled item must reference a product")
		}
		if item.Quantity <= 0 {
			return apperrors.Validation("Each cancelled item must have a positive quantity")
		}
		if item.TotalPrice <= 0 {
			return apperrors.Validation("Each cancelled item must have a valid total_price")
		}
		refundAmount += item.TotalPrice
	}

	existing, err := s.cancellations.FindByOrderID(ctx, input.OrderID)
	switch {
	case err == nil:
		if err := s.cancellations.AppendItems(ctx, input.OrderID, input.CancelledItems, refundAmount, input.CancellationReason); err != nil {
			return apperrors.Internal("Failed to update cancelled order", err)
		}
		s.logger.Info("Cancelled order updated",
			zap.String("order_id", input.OrderID.Hex()),
			zap.Float64("refund_delta", refundAmount),
			zap.Float64("total_refund", existing.TotalRefundAmount+refundAmount),
		)
	case errors.Is(err, mongo.ErrNoDocuments):
		record := &models.CancelledOrder{
			OrderID:            input.OrderID,
			UserID:             input.UserID,
			CancelledItems:     input.CancelledItems,
			CancellationReason: input.CancellationReason,
			CancelledAt:        time.Now().UTC(),
			RefundStatus:       models.RefundStatusPending,
			TotalRefundAmount:  refundAmount,
			IsProcessed:        false,
		}
		if err := s.cancellations.Insert(ctx, record); err != nil {
			return apperrors.Internal("Failed to create cancelled order", err)
		}
		s.logger.Info("Cancelled order created",
			zap.String("order_id", input.OrderID.Hex()),
			zap.Float64("total_refund", refundAmount),
		)
	default:
		return apperrors.Internal("Failed to look up cancelled order", err)
	}

	// Restore stock for the batch. Missing catalog entries are skipped:
	// failing a refund because the catalog changed since the sale would be
	// worse than a silently skipped stock adjustment.
	deltas := make([]StockDelta, 0, len(input.CancelledItems))
	for _, item := range input.CancelledItems {
		deltas = append(deltas, StockDelta{
			ProductID:            item.ProductID,
			VariantCombinationID: item.VariantCombinationID,
			Quantity:             -item.Quantity,
		})
	}
	return s.ledger.Apply(ctx, deltas, MissingSkip)
}

// MarkProcessed flags operational handling complete. Idempotent: repeated
// calls succeed without touching the record again.
func (s *CancellationService) MarkProcessed(ctx context.Context, id string) (*models.CancelledOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid cancelled order id")
	}

	record, err := s.cancellations.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Cancelled order not found")
		}
		return nil, apperrors.Internal("Failed to load cancelled order", err)
	}
	if record.IsProcessed {
		return record, nil
	}

	if err := s.cancellations.MarkProcessed(ctx, oid); err != nil {
		return nil, apperrors.Internal("Failed to mark cancelled order processed", err)
	}
	record.IsProcessed = true
	return record, nil
}

// UpdateRefundStatus moves the refund through Pending/Processed/NotRequired.
// The external transaction id is persisted only on Processed.
func (s *CancellationService) UpdateRefundStatus(ctx context.Context, id string, status models.RefundStatus, transactionID string) (*models.CancelledOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid cancelled order id")
	}
	if !status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid refund status value: %s", status))
	}

	txnID := ""
	if status == models.RefundStatusProcessed {
		txnID = transactionID
	}
	if err := s.cancellations.SetRefundStatus(ctx, oid, status, txnID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Cancelled order not found")
		}
		return nil, apperrors.Internal("Failed to update refund status", err)
	}
	record, err := s.cancellations.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.Internal("Failed to reload cancelled order", err)
	}
	return record, nil
}

type PagedCancellations struct {
	Rows       []models.CancelledOrder `json:"data"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"currentPage"`
	TotalPages int64                   `json:"totalPages"`
}

func (s *CancellationService) List(ctx context.Context, page, limit int) (*PagedCancellations, error) {
	rows, total, err := s.cancellations.List(ctx, page, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to list cancelled orders", err)
	}
	return &PagedCancellations{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}
