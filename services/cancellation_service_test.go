package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/models"
)

type cancellationFixture struct {
	svc   *CancellationService
	store *fakeStore
	repo  *fakeCancellationRepo
}

func newCancellationFixture() *cancellationFixture {
	store := newFakeStore()
	repo := &fakeCancellationRepo{store: store}
	catalog := &fakeCatalogRepo{store: store}
	logger := zap.NewNop()
	svc := NewCancellationService(repo, NewStockLedger(catalog, logger), logger)
	return &cancellationFixture{svc: svc, store: store, repo: repo}
}

func cancelledItem(productID primitive.ObjectID, qty int, unit float64) models.CancelledItem {
	return models.CancelledItem{
		ProductID:    productID,
		Quantity:     qty,
		PricePerUnit: unit,
		TotalPrice:   unit * float64(qty),
	}
}

func (f *cancellationFixture) recordFor(orderID primitive.ObjectID) *models.CancelledOrder {
	for _, rec := range f.store.cancellations {
		if rec.OrderID == orderID {
			return rec
		}
	}
	return nil
}

func TestCreateOrUpdateCancellation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - first cancellation creates the record", func(t *testing.T) {
		f := newCancellationFixture()
		productID := primitive.NewObjectID()
		f.store.products[productID] = &models.Product{ID: productID, Stock: 3}
		orderID := primitive.NewObjectID()

		err := f.svc.CreateOrUpdate(ctx, CreateCancellationInput{
			OrderID:            orderID,
			UserID:             primitive.NewObjectID(),
			CancelledItems:     []models.CancelledItem{cancelledItem(productID, 2, 250)},
			CancellationReason: "Ordered by mistake",
		})

		require.NoError(t, err)
		rec := f.recordFor(orderID)
		require.NotNil(t, rec)
		assert.Equal(t, 500.0, rec.TotalRefundAmount)
		assert.Equal(t, models.RefundStatusPending, rec.RefundStatus)
		assert.False(t, rec.IsProcessed)
		assert.Equal(t, 5, f.store.products[productID].Stock)
	})

	t.Run("Success - later batches merge and sum the refund", func(t *testing.T) {
		f := newCancellationFixture()
		productA := primitive.NewObjectID()
		productB := primitive.NewObjectID()
		f.store.products[productA] = &models.Product{ID: productA, Stock: 0}
		f.store.products[productB] = &models.Product{ID: productB, Stock: 0}
		orderID := primitive.NewObjectID()
		userID := primitive.NewObjectID()

		require.NoError(t, f.svc.CreateOrUpdate(ctx, CreateCancellationInput{
			OrderID:        orderID,
			UserID:         userID,
			CancelledItems: []models.CancelledItem{cancelledItem(productA, 1, 250)},
		}))
		require.NoError(t, f.svc.CreateOrUpdate(ctx, CreateCancellationInput{
			OrderID:        orderID,
			UserID:         userID,
			CancelledItems: []models.CancelledItem{cancelledItem(productB, 2, 100)},
		}))

		assert.Len(t, f.store.cancellations, 1)
		rec := f.recordFor(orderID)
		require.NotNil(t, rec)
		assert.Len(t, rec.CancelledItems, 2)
		assert.Equal(t, 450.0, rec.TotalRefundAmount)
		assert.Equal(t, 1, f.store.products[productA].Stock)
		assert.Equal(t, 2, f.store.products[productB].Stock)
	})

	t.Run("Success - missing catalog entry does not block the refund", func(t *testing.T) {
		f := newCancellationFixture()
		orderID := primitive.NewObjectID()

		err := f.svc.CreateOrUpdate(ctx, CreateCancellationInput{
			OrderID:        orderID,
			UserID:         primitive.NewObjectID(),
			CancelledItems: []models.CancelledItem{cancelledItem(primitive.NewObjectID(), 1, 250)},
		})

		require.NoError(t, err)
		assert.NotNil(t, f.recordFor(orderID))
	})

	t.Run("Failure - empty item batch", func(t *testing.T) {
		f := newCancellationFixture()

		err := f.svc.CreateOrUpdate(ctx, CreateCancellationInput{
			OrderID: primitive.NewObjectID(),
			UserID:  primitive.NewObjectID(),
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("Failure - non-positive quantity", func(t *testing.T) {
		f := newCancellationFixture()

		err := f.svc.CreateOrUpdate(ctx, CreateCancellationInput{
			OrderID:        primitive.NewObjectID(),
			UserID:         primitive.NewObjectID(),
			CancelledItems: []models.CancelledItem{{ProductID: primitive.NewObjectID(), Quantity: 0, TotalPrice: 100}},
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestMarkCancellationProcessed(t *testing.T) {
	ctx := context.Background()

	seed := func(f *cancellationFixture) *models.CancelledOrder {
		rec := &models.CancelledOrder{
			ID:                primitive.NewObjectID(),
			OrderID:           primitive.NewObjectID(),
			UserID:            primitive.NewObjectID(),
			CancelledItems:    []models.CancelledItem{cancelledItem(primitive.NewObjectID(), 1, 250)},
			RefundStatus:      models.RefundStatusPending,
			TotalRefundAmount: 250,
		}
		f.store.cancellations[rec.ID] = rec
		return rec
	}

	t.Run("Success - idempotent across repeated calls", func(t *testing.T) {
		f := newCancellationFixture()
		rec := seed(f)

		first, err := f.svc.MarkProcessed(ctx, rec.ID.Hex())
		require.NoError(t, err)
		assert.True(t, first.IsProcessed)

		second, err := f.svc.MarkProcessed(ctx, rec.ID.Hex())
		require.NoError(t, err)
		assert.True(t, second.IsProcessed)
	})

	t.Run("Failure - unknown record", func(t *testing.T) {
		f := newCancellationFixture()

		_, err := f.svc.MarkProcessed(ctx, primitive.NewObjectID().Hex())

		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("Failure - malformed id", func(t *testing.T) {
		f := newCancellationFixture()

		_, err := f.svc.MarkProcessed(ctx, "nope")

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestUpdateCancellationRefundStatus(t *testing.T) {
	ctx := context.Background()

	seed := func(f *cancellationFixture) *models.CancelledOrder {
		rec := &models.CancelledOrder{
			ID:                primitive.NewObjectID(),
			OrderID:           primitive.NewObjectID(),
			UserID:            primitive.NewObjectID(),
			CancelledItems:    []models.CancelledItem{cancelledItem(primitive.NewObjectID(), 1, 250)},
			RefundStatus:      models.RefundStatusPending,
			TotalRefundAmount: 250,
		}
		f.store.cancellations[rec.ID] = rec
		return rec
	}

	t.Run("Success - transaction id stored on Processed", func(t *testing.T) {
		f := newCancellationFixture()
		rec := seed(f)

		updated, err := f.svc.UpdateRefundStatus(ctx, rec.ID.Hex(), models.RefundStatusProcessed, "txn_789")

		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusProcessed, updated.RefundStatus)
		assert.Equal(t, "txn_789", updated.TransactionID)
	})

	t.Run("Success - transaction id dropped for NotRequired", func(t *testing.T) {
		f := newCancellationFixture()
		rec := seed(f)

		updated, err := f.svc.UpdateRefundStatus(ctx, rec.ID.Hex(), models.RefundStatusNotRequired, "txn_789")

		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusNotRequired, updated.RefundStatus)
		assert.Empty(t, updated.TransactionID)
	})

	t.Run("Failure - unknown refund status", func(t *testing.T) {
		f := newCancellationFixture()
		rec := seed(f)

		_, err := f.svc.UpdateRefundStatus(ctx, rec.ID.Hex(), "Reversed", "")

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("Failure - unknown record", func(t *testing.T) {
		f := newCancellationFixture()

		_, err := f.svc.UpdateRefundStatus(ctx, primitive.NewObjectID().Hex(), models.RefundStatusProcessed, "txn_789")

		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}
