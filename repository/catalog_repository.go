package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"order-service/models"
)

// MongoCatalogRepository reads products and adjusts the two stock
// representations. Decrements carry a stock guard in the filter so a write
// that would drive stock negative simply matches nothing; the delta is
// applied atomically per document either way.
type MongoCatalogRepository struct {
	products    *mongo.Collection
	variantSets *mongo.Collection
}

func NewMongoCatalogRepository(db *mongo.Database) *MongoCatalogRepository {
	return &MongoCatalogRepository{
		products:    db.Collection("products"),
		variantSets: db.Collection("productvariantsets"),
	}
}

func (r *MongoCatalogRepository) FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoCatalogRepository) ProductExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.products.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoCatalogRepository) DecrementProductStock(ctx context.Context, id primitive.ObjectID, qty int) (int64, error) {
	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *MongoCatalogRepository) IncrementProductStock(ctx context.Context, id primitive.ObjectID, qty int) (int64, error) {
	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *MongoCatalogRepository) CombinationExists(ctx context.Context, combinationID primitive.ObjectID) (bool, error) {
	count, err := r.variantSets.CountDocuments(ctx, bson.M{"combinations._id": combinationID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoCatalogRepository) DecrementCombinationStock(ctx context.Context, combinationID primitive.ObjectID, qty int) (int64, error) {
	res, err := r.variantSets.UpdateOne(ctx,
		bson.M{"combinations": bson.M{"$elemMatch": bson.M{
			"_id":   combinationID,
			"stock": bson.M{"$gte": qty},
		}}},
		bson.M{
			"$inc": bson.M{"combinations.$.stock": -qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *MongoCatalogRepository) IncrementCombinationStock(ctx context.Context, combinationID primitive.ObjectID, qty int) (int64, error) {
	res, err := r.variantSets.UpdateOne(ctx,
		bson.M{"combinations._id": combinationID},
		bson.M{
			"$inc": bson.M{"combinations.$.stock": qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
