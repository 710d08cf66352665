package models

import "time"

// CartItem is embedded in User. Price is the snapshot taken when the item was
// added; it is only re-validated against the live product at checkout.
// Invariant: at most one CartItem per product per user.
type CartItem struct {
	ProductID string    `json:"productId" bson:"productId"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	Price     int64     `json:"price" bson:"price"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}

type User struct {
	UserID        string     `json:"userId" bson:"_id"`
	Name          string     `json:"name" bson:"name"`
	Email         string     `json:"email" bson:"email"`
	PasswordHash  string     `json:"-" bson:"passwordHash"`
	Role          string     `json:"role" bson:"role"` // "customer" or "admin"
	CartItems     []CartItem `json:"cartItems" bson:"cartItems"`
	TotalOrders   int        `json:"totalOrders" bson:"totalOrders"`
	RefreshToken  string     `json:"-" bson:"refreshToken,omitempty"`
	RefreshExpiry time.Time  `json:"-" bson:"refreshExpiry,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)
