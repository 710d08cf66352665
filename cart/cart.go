package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"albaceo/db"
	"albaceo/models"
	"albaceo/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// cartItemView flattens product details into the cart line for the client.
type cartItemView struct {
	models.Product
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"` // snapshot taken when the item was added
}

func loadUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AddToCart puts one unit of a product into the cart with a price snapshot.
// A product already in the cart is a conflict: quantity changes go through
// UpdateQuantity, which keeps the one-entry-per-product invariant intact.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "productId is required")
		return
	}

	// Never trust the client: the product must exist in the catalog
	var product models.Product
	if err := db.ProductCollection.FindOne(ctx, bson.M{"_id": input.ProductID}).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Println("AddToCart product lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	user, err := loadUser(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if FindItem(user.CartItems, input.ProductID) >= 0 {
		utils.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("Product %q is already in your cart. Use the update function to change its quantity.", product.Name))
		return
	}

	if product.Stock < 1 {
		utils.RespondWithError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("Product %q is out of stock at the moment.", product.Name))
		return
	}

	newItem := models.CartItem{
		ProductID: product.ProductID,
		Quantity:  1,
		Price:     product.Price,
		AddedAt:   time.Now(),
	}
	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"cartItems": newItem}},
	); err != nil {
		log.Println("AddToCart UpdateOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	respondWithCart(ctx, w, userID)
}

// GetCart returns the populated cart, silently dropping entries whose product
// was deleted by an admin since it was added.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondWithCart(ctx, w, userID)
}

// UpdateQuantity sets the quantity of an existing cart line after re-checking
// live stock. Quantity zero removes the line.
func UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	productID := ps.ByName("id")

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Quantity < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "A non-negative quantity is required")
		return
	}

	user, err := loadUser(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if FindItem(user.CartItems, productID) < 0 {
		utils.RespondWithError(w, http.StatusNotFound, "The item is already gone")
		return
	}

	if input.Quantity == 0 {
		if _, err := db.UserCollection.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$pull": bson.M{"cartItems": bson.M{"productId": productID}}},
		); err != nil {
			log.Println("UpdateQuantity pull error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
			return
		}
		respondWithCart(ctx, w, userID)
		return
	}

	var product models.Product
	if err := db.ProductCollection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "The product no longer exists")
		return
	}
	if product.Stock < input.Quantity {
		utils.RespondWithError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("Not enough stock for %s. Only %d items are available at the moment.", product.Name, product.Stock))
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID, "cartItems.productId": productID},
		bson.M{"$set": bson.M{"cartItems.$.quantity": input.Quantity}},
	); err != nil {
		log.Println("UpdateQuantity set error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	respondWithCart(ctx, w, userID)
}

// RemoveFromCart pulls a product's line out of the cart.
func RemoveFromCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "productId is required")
		return
	}

	user, err := loadUser(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if FindItem(user.CartItems, input.ProductID) < 0 {
		utils.RespondWithError(w, http.StatusNotFound, "The item is already gone")
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"cartItems": bson.M{"productId": input.ProductID}}},
	); err != nil {
		log.Println("RemoveFromCart pull error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	respondWithCart(ctx, w, userID)
}

func respondWithCart(ctx context.Context, w http.ResponseWriter, userID string) {
	user, err := loadUser(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	populated, err := Populate(ctx, user.CartItems)
	if err != nil {
		log.Println("respondWithCart populate error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	views := []cartItemView{}
	for _, p := range populated {
		if p.Product == nil {
			continue
		}
		views = append(views, cartItemView{
			Product:  *p.Product,
			Quantity: p.Item.Quantity,
			Price:    p.Item.Price,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}
