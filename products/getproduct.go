package products

import (
	"context"
	"log"
	"net/http"
	"time"

	"albaceo/db"
	"albaceo/models"
	"albaceo/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"_id": ps.ByName("id")}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Println("GetProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// GetRecommendedProducts samples a handful of random products for the
// "people also bought" strip.
func GetRecommendedProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sample", Value: bson.M{"size": 3}}},
		bson.D{{Key: "$project", Value: bson.M{
			"name": 1, "description": 1, "price": 1, "image": 1, "category": 1,
		}}},
	}

	cursor, err := db.ProductCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Println("GetRecommendedProducts aggregate error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		log.Println("GetRecommendedProducts cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"products": products})
}

func GetProductsByCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	page, limit := utils.ParsePagination(r)
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := db.ProductCollection.Find(ctx, bson.M{"category": ps.ByName("category")}, opts)
	if err != nil {
		log.Println("GetProductsByCategory Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		log.Println("GetProductsByCategory cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"products": products})
}
