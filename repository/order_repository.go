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

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

// EnsureIndexes creates the unique order number index and the payment
// lookup index.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "razorpayOrderId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	return err
}

func (r *MongoOrderRepository) Insert(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) MarkPaid(ctx context.Context, razorpayOrderID, razorpayPaymentID string) (*models.Order, error) {
	filter := bson.M{"razorpayOrderId": razorpayOrderID}
	update := bson.M{"$set": bson.M{
		"paymentStatus":     models.PaymentStatusPaid,
		"razorpayPaymentId": razorpayPaymentID,
		"updatedAt":         time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, shippedAt, deliveredAt *time.Time) error {
	set := bson.M{
		"orderStatus": status,
		"updatedAt":   time.Now().UTC(),
	}
	if shippedAt != nil {
		set["shippedAt"] = *shippedAt
	}
	if deliveredAt != nil {
		set["deliveredAt"] = *deliveredAt
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

func (r *MongoOrderRepository) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.OrderItem, isDeleted bool) error {
	if items == nil {
		items = []models.OrderItem{}
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"orderedItems": items,
		"isDeleted":    isDeleted,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoOrderRepository) FindPaidByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.UserOrderedProduct, int64, error) {
	skip := int64((page - 1) * limit)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":       userID,
			"isDeleted":     false,
			"paymentStatus": models.PaymentStatusPaid,
		}}},
		{{Key: "$unwind", Value: "$orderedItems"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "orderedItems.product_id",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":            0,
			"order_id":       "$_id",
			"product_id":     "$orderedItems.product_id",
			"product_name":   "$product.product_name",
			"product_image":  bson.M{"$arrayElemAt": bson.A{"$product.imageUrls", 0}},
			"quantity":       "$orderedItems.quantity",
			"price_per_unit": "$orderedItems.price_per_unit",
			"total_price":    "$orderedItems.total_price",
			"orderStatus":    1,
			"orderedAt":      "$createdAt",
			"shippedAt":      1,
			"deliveredAt":    1,
		}}},
		{{Key: "$sort", Value: bson.M{"orderedAt": -1}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var rows []models.UserOrderedProduct
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, err
	}

	total, err := r.countItems(ctx, bson.M{"user_id": userID, "isDeleted": false})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *MongoOrderRepository) ListAll(ctx context.Context, page, limit int) ([]models.OrderListRow, int64, error) {
	skip := int64((page - 1) * limit)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"isDeleted":     false,
			"paymentStatus": models.PaymentStatusPaid,
		}}},
		{{Key: "$unwind", Value: "$orderedItems"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "orderedItems.product_id",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":            0,
			"order_id":       "$_id",
			"order_number":   1,
			"user_id":        1,
			"product_name":   "$product.product_name",
			"quantity":       "$orderedItems.quantity",
			"price_per_unit": "$orderedItems.price_per_unit",
			"total_price":    "$orderedItems.total_price",
			"orderStatus":    1,
			"totalAmount":    1,
			"createdAt":      1,
			"shippedAt":      1,
			"deliveredAt":    1,
		}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var rows []models.OrderListRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{"isDeleted": false})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// countItems counts flattened line items matching the filter.
func (r *MongoOrderRepository) countItems(ctx context.Context, match bson.M) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$orderedItems"}},
		{{Key: "$count", Value: "total"}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}
