package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImages holds the three required views of a product.
type ProductImages struct {
	Front string `json:"front" bson:"front"`
	Left  string `json:"left" bson:"left"`
	Right string `json:"right" bson:"right"`
}

// Product is a catalog entry. Created and deleted by administrators
// only; end users never own products.
type Product struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"productname" bson:"productname"`
	Price       float64            `json:"price" bson:"price"`
	Images      ProductImages      `json:"images" bson:"images"`
	Description string             `json:"description" bson:"description"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}
