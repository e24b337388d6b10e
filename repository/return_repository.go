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

type MongoReturnRepository struct {
	collection *mongo.Collection
}

func NewMongoReturnRepository(db *mongo.Database) *MongoReturnRepository {
	return &MongoReturnRepository{collection: db.Collection("returnedorders")}
}

func (r *MongoReturnRepository) Insert(ctx context.Context, record *models.ReturnedOrder) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.ReturnImages == nil {
		record.ReturnImages = []string{}
	}
	if record.ImageKeys == nil {
		record.ImageKeys = []string{}
	}
	res, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}
	return nil
}

func (r *MongoReturnRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReturnedOrder, error) {
	var record models.ReturnedOrder
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MongoReturnRepository) MarkInspected(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isInspected": true,
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

func (r *MongoReturnRepository) SetRefundStatus(ctx context.Context, id primitive.ObjectID, status models.RefundStatus, transactionID string) error {
	set := bson.M{
		"refundStatus": status,
		"updatedAt":    time.Now().UTC(),
	}
	if status == models.RefundStatusProcessed {
		set["refundedAt"] = time.Now().UTC()
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

func (r *MongoReturnRepository) List(ctx context.Context, page, limit int) ([]models.ReturnedOrder, int64, error) {
	skip := int64((page - 1) * limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "returnedAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var records []models.ReturnedOrder
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
