package models

import "time"

// OrderProduct is an immutable snapshot of a purchased line, deliberately
// decoupled from later Product mutation.
type OrderProduct struct {
	ProductID string `json:"productId" bson:"productId"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Price     int64  `json:"price" bson:"price"`
}

// ShippingAddress mirrors the address block Stripe collects at checkout.
type ShippingAddress struct {
	Name       string `json:"name,omitempty" bson:"name,omitempty"`
	Line1      string `json:"line1,omitempty" bson:"line1,omitempty"`
	Line2      string `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
}

// Order is created exactly once per Stripe session: StripeSessionID carries a
// unique index, which is the idempotency guard for webhook replays.
// TotalAmount is the provider-confirmed amount in cents (after discounts,
// including shipping), distinct from the pre-discount metadata total.
type Order struct {
	OrderID            string          `json:"orderId" bson:"_id"`
	UserID             string          `json:"userId" bson:"userId"`
	Products           []OrderProduct  `json:"products" bson:"products"`
	TotalAmount        int64           `json:"totalAmount" bson:"totalAmount"`
	StripeSessionID    string          `json:"stripeSessionId" bson:"stripeSessionId"`
	ShippingMethodName string          `json:"shippingMethodName" bson:"shippingMethodName"`
	ShippingCost       int64           `json:"shippingCost" bson:"shippingCost"`
	ShippingAddress    ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	CreatedAt          time.Time       `json:"createdAt" bson:"createdAt"`
}
