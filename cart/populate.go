package cart

import (
	"context"

	"albaceo/db"
	"albaceo/models"

	"go.mongodb.org/mongo-driver/bson"
)

// PopulatedItem pairs a cart entry with its live product document. Product is
// nil when the product was deleted after the item was added; callers decide
// whether to filter or to report it.
type PopulatedItem struct {
	Item    models.CartItem
	Product *models.Product
}

// Populate resolves the user's cart entries against the live catalog in one
// $in query, preserving cart order.
func Populate(ctx context.Context, items []models.CartItem) ([]PopulatedItem, error) {
	if len(items) == 0 {
		return []PopulatedItem{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	cursor, err := db.ProductCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}

	populated := make([]PopulatedItem, 0, len(items))
	for _, it := range items {
		populated = append(populated, PopulatedItem{Item: it, Product: byID[it.ProductID]})
	}
	return populated, nil
}

// FindItem returns the index of the cart entry for productID, or -1.
func FindItem(items []models.CartItem, productID string) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
