package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsersCollection is the collection User documents live in.
const UsersCollection = "users"

// User field names as stored in Mongo.
const (
	UserFieldEmail     = "email"
	UserFieldUsername  = "username"
	UserFieldCreatedAt = "created_at"
)

// User is a marketplace account. Email and username are unique.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	FullName       string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address        string             `bson:"address,omitempty" json:"address,omitempty"`
	ProfileImage   string             `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	IsVerified     bool               `bson:"is_verified" json:"is_verified"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
