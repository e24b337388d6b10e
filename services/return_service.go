package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/models"
	"order-service/repository"
	"order-service/storage"
)

const returnImageFolder = "return-images"

// EvidenceImage is one uploaded file attached to a return request.
type EvidenceImage struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// BlobStorage is the slice of object storage the return flow needs.
type BlobStorage interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*storage.UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// CreateReturnInput describes a post-delivery return of one line item.
type CreateReturnInput struct {
	OrderID      primitive.ObjectID
	UserID       primitive.ObjectID
	ProductID    primitive.ObjectID
	VariantID    *primitive.ObjectID
	Quantity     int
	PricePerUnit float64
	ReturnReason string
	Images       []EvidenceImage
}

// ReturnService records return requests. Each request creates its own
// document; returns are never merged per order the way cancellations are,
// and stock is not restored here — returned goods re-enter inventory only
// after inspection, through a separate decision.
type ReturnService struct {
	returns repository.ReturnRepository
	storage BlobStorage
	logger  *zap.Logger
}

func NewReturnService(returns repository.ReturnRepository, blob BlobStorage, logger *zap.Logger) *ReturnService {
	return &ReturnService{returns: returns, storage: blob, logger: logger}
}

// Create uploads evidence images and persists the return record. Image
// uploads are best-effort: one failed upload is logged and skipped rather
// than failing the whole return.
func (s *ReturnService) Create(ctx context.Context, input CreateReturnInput) (*models.ReturnedOrder, error) {
	if input.OrderID.IsZero() || input.UserID.IsZero() || input.ProductID.IsZero() {
		return nil, apperrors.Validation("Missing required fields for return order")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("Return quantity must be positive")
	}
	if input.PricePerUnit <= 0 {
		return nil, apperrors.Validation("Return price_per_unit must be positive")
	}

	urls, keys := s.uploadImages(ctx, input.Images)

	record := &models.ReturnedOrder{
		OrderID:      input.OrderID,
		UserID:       input.UserID,
		ProductID:    input.ProductID,
		VariantID:    input.VariantID,
		Quantity:     input.Quantity,
		PricePerUnit: input.PricePerUnit,
		TotalPrice:   float64(input.Quantity) * input.PricePerUnit,
		ReturnReason: input.ReturnReason,
		ReturnedAt:   time.Now().UTC(),
		RefundStatus: models.RefundStatusPending,
		IsInspected:  false,
		ReturnImages: urls,
		ImageKeys:    keys,
	}

	if err := s.returns.Insert(ctx, record); err != nil {
		return nil, apperrors.Internal("Failed to create returned order", err)
	}

	s.logger.Info("Returned order created",
		zap.String("order_id", input.OrderID.Hex()),
		zap.String("product_id", input.ProductID.Hex()),
		zap.Int("images", len(urls)),
	)
	return record, nil
}

func (s *ReturnService) uploadImages(ctx context.Context, images []EvidenceImage) (urls, keys []string) {
	urls = []string{}
	keys = []string{}
	if len(images) == 0 {
		return urls, keys
	}
	if s.storage == nil {
		s.logger.Warn("Blob storage not configured, dropping return images", zap.Int("images", len(images)))
		return urls, keys
	}
	for _, img := range images {
		res, err := s.storage.Upload(ctx, returnImageFolder, img.FileName, img.ContentType, img.Body)
		if err != nil {
			s.logger.Warn("Return image upload failed, skipping",
				zap.String("file", img.FileName),
				zap.Error(err),
			)
			continue
		}
		urls = append(urls, res.URL)
		keys = append(keys, res.Key)
	}
	return urls, keys
}

// MarkInspected records that the returned goods were inspected. One-way and
// idempotent: inspecting an already-inspected return still reports success.
func (s *ReturnService) MarkInspected(ctx context.Context, id string) (*models.ReturnedOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid returned order id")
	}

	record, err := s.returns.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Returned order not found")
		}
		return nil, apperrors.Internal("Failed to load returned order", err)
	}
	if record.IsInspected {
		return record, nil
	}

	if err := s.returns.MarkInspected(ctx, oid); err != nil {
		return nil, apperrors.Internal("Failed to mark return inspected", err)
	}
	record.IsInspected = true
	return record, nil
}

func (s *ReturnService) UpdateRefundStatus(ctx context.Context, id string, status models.RefundStatus, transactionID string) (*models.ReturnedOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid returned order id")
	}
	if !status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid return status: %s", status))
	}

	txnID := ""
	if status == models.RefundStatusProcessed {
		txnID = transactionID
	}
	if err := s.returns.SetRefundStatus(ctx, oid, status, txnID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Returned order not found")
		}
		return nil, apperrors.Internal("Failed to update return status", err)
	}
	record, err := s.returns.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.Internal("Failed to reload returned order", err)
	}
	return record, nil
}

type PagedReturns struct {
	Rows       []models.ReturnedOrder `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"currentPage"`
	TotalPages int64                  `json:"totalPages"`
}

func (s *ReturnService) List(ctx context.Context, page, limit int) (*PagedReturns, error) {
	rows, total, err := s.returns.List(ctx, page, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to list returned orders", err)
	}
	return &PagedReturns{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}
