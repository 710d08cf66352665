package products

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"albaceo/db"
	"albaceo/filemgr"
	"albaceo/inventory"
	"albaceo/models"
	"albaceo/rdx"
	"albaceo/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const featuredCacheKey = "featured_products"

// GetAllProducts returns a sorted page of the catalog. The total comes from
// the counter document, not a collection count, so paginated listings stay
// cheap as the catalog grows.
func GetAllProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	page, limit := utils.ParsePagination(r)
	sortField := r.URL.Query().Get("sort")
	if sortField == "" {
		sortField = "createdAt"
	}
	direction := -1
	if r.URL.Query().Get("direction") == "asc" {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := db.ProductCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Println("GetAllProducts Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		log.Println("GetAllProducts cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	var counter models.Counter
	err = db.CounterCollection.FindOne(ctx, bson.M{"_id": models.ProductsCounterID}).Decode(&counter)
	if err != nil && err != mongo.ErrNoDocuments {
		log.Println("GetAllProducts counter error:", err)
	}
	total := counter.TotalProducts

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"products":      products,
		"totalProducts": total,
		"totalPages":    int64(math.Ceil(float64(total) / float64(limit))),
		"page":          page,
		"hasNextPage":   int64(page*limit) < total,
	})
}

// GetFeaturedProducts serves from the Redis cache when warm, falling back to
// Mongo and repopulating the cache on a miss.
func GetFeaturedProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if cached, err := rdx.RdxGet(ctx, featuredCacheKey); err == nil && cached != "" {
		var products []models.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			utils.RespondWithJSON(w, http.StatusOK, products)
			return
		}
	}

	products, err := loadFeatured(ctx)
	if err != nil {
		log.Println("GetFeaturedProducts Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	if data, err := json.Marshal(products); err == nil {
		if err := rdx.RdxSet(ctx, featuredCacheKey, string(data), 0); err != nil {
			log.Println("GetFeaturedProducts cache write error:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, products)
}

// CreateProduct inserts a catalog entry (admin only). Accepts multipart form
// data with an image file; the counter is bumped atomically alongside.
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var input models.Product
	if err := json.Unmarshal([]byte(r.FormValue("product")), &input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product payload")
		return
	}
	if input.Name == "" || input.Category == "" || input.Price <= 0 || input.Stock < 0 {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Name, category, a positive price and non-negative stock are required")
		return
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		imagePath, publicID, saveErr := filemgr.SaveProductImage(file, header)
		if saveErr != nil {
			utils.RespondWithError(w, http.StatusBadRequest, saveErr.Error())
			return
		}
		input.Image = imagePath
		input.PublicID = publicID
	}

	now := time.Now()
	input.ProductID = uuid.NewString()
	input.CreatedAt = now
	input.UpdatedAt = now

	if _, err := db.ProductCollection.InsertOne(ctx, input); err != nil {
		filemgr.DeleteProductImage(input.PublicID)
		log.Println("CreateProduct InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	// Counter document is created on first use and bumped atomically after
	total, err := bumpProductCounter(ctx, 1)
	if err != nil {
		log.Println("CreateProduct counter error:", err)
	}

	if input.IsFeatured {
		refreshFeaturedCache(ctx)
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"product":       input,
		"totalProducts": total,
	})
}

// DeleteProduct removes a catalog entry and its stored image (admin only).
func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	err := db.ProductCollection.FindOneAndDelete(ctx, bson.M{"_id": ps.ByName("id")}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Println("DeleteProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	filemgr.DeleteProductImage(product.PublicID)

	if _, err := bumpProductCounter(ctx, -1); err != nil {
		log.Println("DeleteProduct counter error:", err)
	}

	// Drop the cache rather than rebuild it: the next featured read must not
	// race a rebuild that could still contain the deleted product.
	if err := rdx.RdxDel(ctx, featuredCacheKey); err != nil {
		log.Println("DeleteProduct cache invalidate error:", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// RestockProduct adds inventory back to a product (admin only). Goes through
// the stock ledger so restocks and checkout decrements share one path.
func RestockProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Quantity <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "A positive quantity is required")
		return
	}

	productID := ps.ByName("id")
	if err := db.ProductCollection.FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := inventory.RestoreStock(ctx, productID, input.Quantity); err != nil {
		log.Println("RestockProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Stock updated successfully"})
}

// ToggleFeaturedProduct flips the featured flag and refreshes the cache.
func ToggleFeaturedProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	err := db.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": ps.ByName("id")},
		[]bson.M{{"$set": bson.M{"isFeatured": bson.M{"$not": "$isFeatured"}, "updatedAt": time.Now()}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Println("ToggleFeaturedProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	refreshFeaturedCache(ctx)
	utils.RespondWithJSON(w, http.StatusOK, product)
}

func loadFeatured(ctx context.Context) ([]models.Product, error) {
	cursor, err := db.ProductCollection.Find(ctx, bson.M{"isFeatured": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func refreshFeaturedCache(ctx context.Context) {
	products, err := loadFeatured(ctx)
	if err != nil {
		log.Println("refreshFeaturedCache load error:", err)
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := rdx.RdxSet(ctx, featuredCacheKey, string(data), 0); err != nil {
		log.Println("refreshFeaturedCache write error:", err)
	}
}

func bumpProductCounter(ctx context.Context, delta int64) (int64, error) {
	var counter models.Counter
	err := db.CounterCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": models.ProductsCounterID},
		bson.M{"$inc": bson.M{"totalProducts": delta}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.TotalProducts, nil
}
