package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product carries the catalog fields this service reads. Catalog CRUD is
// owned elsewhere; only the stock field is written here.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductName string             `bson:"product_name" json:"product_name"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	ImageURLs   []string           `bson:"imageUrls,omitempty" json:"imageUrls,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VariantCombination is one SKU-level variant (size/color pair) with its own
// price and stock, nested in a ProductVariantSet.
type VariantCombination struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Size  string             `bson:"Size" json:"Size"`
	Color string             `bson:"Color" json:"Color"`
	Price float64            `bson:"price" json:"price"`
	Stock int                `bson:"stock" json:"stock"`
}

// ProductVariantSet is the per-product variant document; combination stock
// lives inside its Combinations array.
type ProductVariantSet struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProductID    primitive.ObjectID   `bson:"productId" json:"productId"`
	VariantName  string               `bson:"varient_name" json:"varient_name"`
	Combinations []VariantCombination `bson:"combinations" json:"combinations"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
