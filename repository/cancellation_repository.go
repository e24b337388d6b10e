package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order-service/models"
)

type MongoCancellationRepository struct {
	collection *mongo.Collection
}

func NewMongoCancellationRepository(db *mongo.Database) *MongoCancellationRepository {
	return &MongoCancellationRepository{collection: db.Collection("cancelledorders")}
}

func (r *MongoCancellationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoCancellationRepository) FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.CancelledOrder, error) {
	var record models.CancelledOrder
	if err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MongoCancellationRepository) Insert(ctx context.Context, record *models.CancelledOrder) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}
	return nil
}

func (r *MongoCancellationRepository) AppendItems(ctx context.Context, orderID primitive.ObjectID, items []models.CancelledItem, refundDelta float64, reason string) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if reason != "" {
		set["cancellationReason"] = reason
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"orderId": orderID}, bson.M{
		"$push": bson.M{"cancelledItems": bson.M{"$each": items}},
		"$inc":  bson.M{"totalRefundAmount": refundDelta},
		"$set":  set,
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoCancellationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CancelledOrder, error) {
	var record models.CancelledOrder
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MongoCancellationRepository) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isProcessed": true,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoCancellationRepository) SetRefundStatus(ctx context.Context, id primitive.ObjectID, status models.RefundStatus, transactionID string) error {
	set := bson.M{
		"refundStatus": status,
		"updatedAt":    time.Now().UTC(),
	}
	if transactionID != "" {
		set["transaction_id"] = transactionID
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoCancellationRepository) List(ctx context.Context, page, limit int) ([]models.CancelledOrder, int64, error) {
	skip := int64((page - 1) * limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "cancelledAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var records []models.CancelledOrder
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
