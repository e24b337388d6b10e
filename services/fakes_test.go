package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"order-service/models"
	"order-service/payments"
	"order-service/storage"
)

// fakeStore is the shared in-memory document store backing every fake
// repository. A fakeTxnRunner snapshots and restores it to mimic
// transaction rollback.
type fakeStore struct {
	orders        map[primitive.ObjectID]*models.Order
	products      map[primitive.ObjectID]*models.Product
	combinations  map[primitive.ObjectID]*models.VariantCombination
	cancellations map[primitive.ObjectID]*models.CancelledOrder
	returns       map[primitive.ObjectID]*models.ReturnedOrder
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:        map[primitive.ObjectID]*models.Order{},
		products:      map[primitive.ObjectID]*models.Product{},
		combinations:  map[primitive.ObjectID]*models.VariantCombination{},
		cancellations: map[primitive.ObjectID]*models.CancelledOrder{},
		returns:       map[primitive.ObjectID]*models.ReturnedOrder{},
	}
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.OrderedItems = append([]models.OrderItem(nil), o.OrderedItems...)
	return &c
}

func copyCancellation(r *models.CancelledOrder) *models.CancelledOrder {
	c := *r
	c.CancelledItems = append([]models.CancelledItem(nil), r.CancelledItems...)
	return &c
}

func copyReturn(r *models.ReturnedOrder) *models.ReturnedOrder {
	c := *r
	c.ReturnImages = append([]string(nil), r.ReturnImages...)
	c.ImageKeys = append([]string(nil), r.ImageKeys...)
	return &c
}

func (s *fakeStore) snapshot() *fakeStore {
	snap := newFakeStore()
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	for id, p := range s.products {
		c := *p
		snap.products[id] = &c
	}
	for id, v := range s.combinations {
		c := *v
		snap.combinations[id] = &c
	}
	for id, r := range s.cancellations {
		snap.cancellations[id] = copyCancellation(r)
	}
	for id, r := range s.returns {
		snap.returns[id] = copyReturn(r)
	}
	return snap
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.orders = snap.orders
	s.products = snap.products
	s.combinations = snap.combinations
	s.cancellations = snap.cancellations
	s.returns = snap.returns
}

// fakeTxnRunner emulates all-or-nothing commit semantics over the fake
// store: when the callback fails, every write it made is rolled back.
type fakeTxnRunner struct {
	store *fakeStore
	calls int
}

func (r *fakeTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	snap := r.store.snapshot()
	if err := fn(ctx); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// --- Order repository ---

type fakeOrderRepo struct {
	store      *fakeStore
	insertErr  error
	replaceErr error
}

func (r *fakeOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, existing := range r.store.orders {
		if existing.OrderNumber == order.OrderNumber {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	r.store.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return copyOrder(o), nil
}

func (r *fakeOrderRepo) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := r.store.orders[id]
	if !ok || o.IsDeleted {
		return nil, mongo.ErrNoDocuments
	}
	return copyOrder(o), nil
}

func (r *fakeOrderRepo) MarkPaid(ctx context.Context, razorpayOrderID, razorpayPaymentID string) (*models.Order, error) {
	for _, o := range r.store.orders {
		if o.RazorpayOrderID == razorpayOrderID {
			o.PaymentStatus = models.PaymentStatusPaid
			o.RazorpayPaymentID = razorpayPaymentID
			o.UpdatedAt = time.Now().UTC()
			return copyOrder(o), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, shippedAt, deliveredAt *time.Time) error {
	o, ok := r.store.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.OrderStatus = status
	if shippedAt != nil {
		o.ShippedAt = shippedAt
	}
	if deliveredAt != nil {
		o.DeliveredAt = deliveredAt
	}
	return nil
}

func (r *fakeOrderRepo) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.OrderItem, isDeleted bool) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	o, ok := r.store.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.OrderedItems = append([]models.OrderItem(nil), items...)
	o.IsDeleted = isDeleted
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeOrderRepo) FindPaidByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.UserOrderedProduct, int64, error) {
	var rows []models.UserOrderedProduct
	for _, o := range r.store.orders {
		if o.UserID != userID || o.PaymentStatus != models.PaymentStatusPaid || o.IsDeleted {
			continue
		}
		for _, item := range o.OrderedItems {
			rows = append(rows, models.UserOrderedProduct{
				OrderID:      o.ID,
				ProductID:    item.ProductID,
				Quantity:     item.Quantity,
				PricePerUnit: item.PricePerUnit,
				TotalPrice:   item.TotalPrice,
				OrderStatus:  o.OrderStatus,
				OrderedAt:    o.CreatedAt,
			})
		}
	}
	return rows, int64(len(rows)), nil
}

func (r *fakeOrderRepo) ListAll(ctx context.Context, page, limit int) ([]models.OrderListRow, int64, error) {
	var rows []models.OrderListRow
	for _, o := range r.store.orders {
		if o.PaymentStatus != models.PaymentStatusPaid || o.IsDeleted {
			continue
		}
		rows = append(rows, models.OrderListRow{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			OrderStatus: o.OrderStatus,
			TotalAmount: o.TotalAmount,
			CreatedAt:   o.CreatedAt,
		})
	}
	return rows, int64(len(rows)), nil
}

// --- Catalog repository ---

type fakeCatalogRepo struct {
	store        *fakeStore
	decrementErr error
}

func (r *fakeCatalogRepo) FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	c := *p
	return &c, nil
}

func (r *fakeCatalogRepo) ProductExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := r.store.products[id]
	return ok, nil
}

func (r *fakeCatalogRepo) DecrementProductStock(ctx context.Context, id primitive.ObjectID, qty int) (int64, error) {
	if r.decrementErr != nil {
		return 0, r.decrementErr
	}
	p, ok := r.store.products[id]
	if !ok || p.Stock < qty {
		return 0, nil
	}
	p.Stock -= qty
	return 1, nil
}

func (r *fakeCatalogRepo) IncrementProductStock(ctx context.Context, id primitive.ObjectID, qty int) (int64, error) {
	p, ok := r.store.products[id]
	if !ok {
		return 0, nil
	}
	p.Stock += qty
	return 1, nil
}

func (r *fakeCatalogRepo) CombinationExists(ctx context.Context, combinationID primitive.ObjectID) (bool, error) {
	_, ok := r.store.combinations[combinationID]
	return ok, nil
}

func (r *fakeCatalogRepo) DecrementCombinationStock(ctx context.Context, combinationID primitive.ObjectID, qty int) (int64, error) {
	if r.decrementErr != nil {
		return 0, r.decrementErr
	}
	v, ok := r.store.combinations[combinationID]
	if !ok || v.Stock < qty {
		return 0, nil
	}
	v.Stock -= qty
	return 1, nil
}

func (r *fakeCatalogRepo) IncrementCombinationStock(ctx context.Context, combinationID primitive.ObjectID, qty int) (int64, error) {
	v, ok := r.store.combinations[combinationID]
	if !ok {
		return 0, nil
	}
	v.Stock += qty
	return 1, nil
}

// --- Cancellation repository ---

type fakeCancellationRepo struct {
	store     *fakeStore
	insertErr error
}

func (r *fakeCancellationRepo) FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.CancelledOrder, error) {
	for _, rec := range r.store.cancellations {
		if rec.OrderID == orderID {
			return copyCancellation(rec), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeCancellationRepo) Insert(ctx context.Context, record *models.CancelledOrder) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	r.store.cancellations[record.ID] = copyCancellation(record)
	return nil
}

func (r *fakeCancellationRepo) AppendItems(ctx context.Context, orderID primitive.ObjectID, items []models.CancelledItem, refundDelta float64, reason string) error {
	for _, rec := range r.store.cancellations {
		if rec.OrderID == orderID {
			rec.CancelledItems = append(rec.CancelledItems, items...)
			rec.TotalRefundAmount += refundDelta
			if reason != "" {
				rec.CancellationReason = reason
			}
			rec.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeCancellationRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CancelledOrder, error) {
	rec, ok := r.store.cancellations[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return copyCancellation(rec), nil
}

func (r *fakeCancellationRepo) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	rec, ok := r.store.cancellations[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	rec.IsProcessed = true
	return nil
}

func (r *fakeCancellationRepo) SetRefundStatus(ctx context.Context, id primitive.ObjectID, status models.RefundStatus, transactionID string) error {
	rec, ok := r.store.cancellations[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	rec.RefundStatus = status
	rec.TransactionID = transactionID
	return nil
}

func (r *fakeCancellationRepo) List(ctx context.Context, page, limit int) ([]models.CancelledOrder, int64, error) {
	var rows []models.CancelledOrder
	for _, rec := range r.store.cancellations {
		rows = append(rows, *copyCancellation(rec))
	}
	return rows, int64(len(rows)), nil
}

// --- Return repository ---

type fakeReturnRepo struct {
	store     *fakeStore
	insertErr error
}

func (r *fakeReturnRepo) Insert(ctx context.Context, record *models.ReturnedOrder) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	r.store.returns[record.ID] = copyReturn(record)
	return nil
}

func (r *fakeReturnRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReturnedOrder, error) {
	rec, ok := r.store.returns[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return copyReturn(rec), nil
}

func (r *fakeReturnRepo) MarkInspected(ctx context.Context, id primitive.ObjectID) error {
	rec, ok := r.store.returns[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	rec.IsInspected = true
	return nil
}

func (r *fakeReturnRepo) SetRefundStatus(ctx context.Context, id primitive.ObjectID, status models.RefundStatus, transactionID string) error {
	rec, ok := r.store.returns[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	rec.RefundStatus = status
	rec.TransactionID = transactionID
	if status == models.RefundStatusProcessed {
		now := time.Now().UTC()
		rec.RefundedAt = &now
	}
	return nil
}

func (r *fakeReturnRepo) List(ctx context.Context, page, limit int) ([]models.ReturnedOrder, int64, error) {
	var rows []models.ReturnedOrder
	for _, rec := range r.store.returns {
		rows = append(rows, *copyReturn(rec))
	}
	return rows, int64(len(rows)), nil
}

// --- Payment gateway ---

type fakeGateway struct {
	calls     int
	createErr error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*payments.GatewayOrder, error) {
	g.calls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &payments.GatewayOrder{
		ID:       fmt.Sprintf("order_fake%d", g.calls),
		Amount:   amountMinor,
		Currency: currency,
	}, nil
}

// --- Blob storage ---

type fakeBlobStorage struct {
	uploads int
	failOn  string
	deleted []string
}

func (b *fakeBlobStorage) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*storage.UploadResult, error) {
	if filename == b.failOn {
		return nil, errors.New("upload rejected")
	}
	b.uploads++
	key := folder + "/" + filename
	return &storage.UploadResult{Key: key, URL: "https://bucket.test/" + key}, nil
}

func (b *fakeBlobStorage) Delete(ctx context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}
