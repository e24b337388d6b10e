package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/repository"
)

// StockDelta is one signed adjustment: a positive quantity depletes stock,
// a negative quantity restores it.
type StockDelta struct {
	ProductID            primitive.ObjectID
	VariantCombinationID *primitive.ObjectID
	Quantity             int
}

// MissingPolicy decides what a missing product or variant combination means
// to the caller.
type MissingPolicy int

const (
	// MissingFail aborts the surrounding transaction. Used by the payment
	// path, where selling an unknown product would corrupt the books.
	MissingFail MissingPolicy = iota
	// MissingSkip logs and moves on. Used by cancellation restores: the
	// catalog entry may have been edited or removed since the sale, and
	// failing a refund over a stale catalog is the worse outcome.
	MissingSkip
)

// StockLedger applies signed deltas to both stock representations: the flat
// product stock and the nested variant-combination stock. Both are adjusted
// from the same delta inside the caller's transaction so they cannot drift.
type StockLedger struct {
	catalog repository.CatalogRepository
	logger  *zap.Logger
}

func NewStockLedger(catalog repository.CatalogRepository, logger *zap.Logger) *StockLedger {
	return &StockLedger{catalog: catalog, logger: logger}
}

// Apply adjusts stock for every delta. A depleting delta that would drive
// stock below zero fails with InsufficientStock and the caller's transaction
// must roll back everything already applied; restoring deltas are never
// rejected for negativity.
func (l *StockLedger) Apply(ctx context.Context, deltas []StockDelta, policy MissingPolicy) error {
	for _, d := range deltas {
		if d.Quantity == 0 {
			continue
		}
		if err := l.applyProduct(ctx, d, policy); err != nil {
			return err
		}
		if d.VariantCombinationID != nil {
			if err := l.applyCombination(ctx, d, policy); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *StockLedger) applyProduct(ctx context.Context, d StockDelta, policy MissingPolicy) error {
	if d.Quantity > 0 {
		matched, err := l.catalog.DecrementProductStock(ctx, d.ProductID, d.Quantity)
		if err != nil {
			return apperrors.Internal("Failed to update product stock", err)
		}
		if matched > 0 {
			return nil
		}
		exists, err := l.catalog.ProductExists(ctx, d.ProductID)
		if err != nil {
			return apperrors.Internal("Failed to check product existence", err)
		}
		if !exists {
			return l.missing(policy, "product", d.ProductID)
		}
		return apperrors.InsufficientStock(fmt.Sprintf("Insufficient stock for product: %s", d.ProductID.Hex()))
	}

	matched, err := l.catalog.IncrementProductStock(ctx, d.ProductID, -d.Quantity)
	if err != nil {
		return apperrors.Internal("Failed to restore product stock", err)
	}
	if matched == 0 {
		return l.missing(policy, "product", d.ProductID)
	}
	return nil
}

func (l *StockLedger) applyCombination(ctx context.Context, d StockDelta, policy MissingPolicy) error {
	combID := *d.VariantCombinationID

	if d.Quantity > 0 {
		matched, err := l.catalog.DecrementCombinationStock(ctx, combID, d.Quantity)
		if err != nil {
			return apperrors.Internal("Failed to update variant stock", err)
		}
		if matched > 0 {
			return nil
		}
		exists, err := l.catalog.CombinationExists(ctx, combID)
		if err != nil {
			return apperrors.Internal("Failed to check variant existence", err)
		}
		if !exists {
			return l.missing(policy, "variant combination", combID)
		}
		return apperrors.InsufficientStock(fmt.Sprintf("Insufficient stock for variant combination: %s", combID.Hex()))
	}

	matched, err := l.catalog.IncrementCombinationStock(ctx, combID, -d.Quantity)
	if err != nil {
		return apperrors.Internal("Failed to restore variant stock", err)
	}
	if matched == 0 {
		return l.missing(policy, "variant combination", combID)
	}
	return nil
}

func (l *StockLedger) missing(policy MissingPolicy, entity string, id primitive.ObjectID) error {
	if policy == MissingSkip {
		l.logger.Warn("Stock adjustment skipped, entity missing",
			zap.String("entity", entity),
			zap.String("id", id.Hex()),
		)
		return nil
	}
	return apperrors.NotFound(fmt.Sprintf("%s not found: %s", entity, id.Hex()))
}
