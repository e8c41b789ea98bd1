package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductsCollection is the collection Product documents live in.
const ProductsCollection = "products"

// Product field names as stored in Mongo.
const (
	ProductFieldSellerID    = "seller_id"
	ProductFieldCategory    = "category"
	ProductFieldCreatedAt   = "created_at"
	ProductFieldTitle       = "title"
	ProductFieldDescription = "description"
)

// ProductStatus is the listing state of a product.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductSold     ProductStatus = "sold"
	ProductDraft    ProductStatus = "draft"
	ProductInactive ProductStatus = "inactive"
)

// ProductCondition describes the wear of the item for sale.
type ProductCondition string

const (
	ConditionNew     ProductCondition = "new"
	ConditionLikeNew ProductCondition = "like_new"
	ConditionGood    ProductCondition = "good"
	ConditionFair    ProductCondition = "fair"
	ConditionPoor    ProductCondition = "poor"
)

// Product is an item listed by a seller. Title and description are covered
// by the collection's text index.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Condition   ProductCondition   `bson:"condition" json:"condition"`
	Images      []string           `bson:"images" json:"images"`
	SellerID    string             `bson:"seller_id" json:"seller_id"`
	Status      ProductStatus      `bson:"status" json:"status"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Tags        []string           `bson:"tags" json:"tags"`
	Views       int                `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
