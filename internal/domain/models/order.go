package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrdersCollection is the collection Order documents live in.
const OrdersCollection = "orders"

// Order field names as stored in Mongo.
const (
	OrderFieldBuyerID   = "buyer_id"
	OrderFieldSellerID  = "seller_id"
	OrderFieldCreatedAt = "created_at"
)

// OrderStatus tracks fulfilment.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// PaymentStatus tracks payment independently of fulfilment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Order is a purchase of a product by a buyer from a seller.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID       string             `bson:"product_id" json:"product_id"`
	BuyerID         string             `bson:"buyer_id" json:"buyer_id"`
	SellerID        string             `bson:"seller_id" json:"seller_id"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	TotalPrice      float64            `bson:"total_price" json:"total_price"`
	Status          OrderStatus        `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus      `bson:"payment_status" json:"payment_status"`
	ShippingAddress string             `bson:"shipping_address" json:"shipping_address"`
	BuyerNotes      string             `bson:"buyer_notes,omitempty" json:"buyer_notes,omitempty"`
	SellerNotes     string             `bson:"seller_notes,omitempty" json:"seller_notes,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
