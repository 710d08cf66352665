// Package inventory is the stock ledger. Every stock mutation is a single
// atomic conditional update; there is no read-modify-write path.
package inventory

import (
	"context"

	"albaceo/db"

	"go.mongodb.org/mongo-driver/bson"
)

// DecrementStock deducts quantity from a product's stock only if enough is
// available: UpdateOne({_id, stock >= qty}, {$inc: {stock: -qty}}). Returns
// false when the guard fails (insufficient stock), which callers treat as a
// recoverable no-op, not an error. Concurrent checkouts can never drive stock
// negative through this path.
func DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	res, err := db.ProductCollection.UpdateOne(ctx,
		bson.M{"_id": productID, "stock": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"stock": -quantity}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RestoreStock adds quantity back, used by admin corrections. Unconditional:
// stock can only grow here.
func RestoreStock(ctx context.Context, productID string, quantity int) error {
	_, err := db.ProductCollection.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$inc": bson.M{"stock": quantity}},
	)
	return err
}
