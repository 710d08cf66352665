package models

import "time"

// Product is a catalog entry. Price is stored in minor currency units (cents).
// Stock is the only field mutated under concurrency pressure; every decrement
// goes through inventory.DecrementStock as a single conditional update.
type Product struct {
	ProductID   string    `json:"productId" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       int64     `json:"price" bson:"price"`
	Stock       int       `json:"stock" bson:"stock"`
	Category    string    `json:"category" bson:"category"`
	Image       string    `json:"image" bson:"image"`
	PublicID    string    `json:"publicId,omitempty" bson:"publicId,omitempty"`
	IsFeatured  bool      `json:"isFeatured" bson:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Counter caches an aggregate count so paginated listings don't run a full
// collection count on every request. Maintained by $inc on create/delete.
type Counter struct {
	ID            string `json:"id" bson:"_id"`
	TotalProducts int64  `json:"totalProducts" bson:"totalProducts"`
}

const ProductsCounterID = "products_count"
