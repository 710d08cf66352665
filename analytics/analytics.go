// Package analytics serves the admin dashboard: storefront totals and a
// rolling daily sales series. All numbers are computed from the orders
// collection; revenue is in cents.
package analytics

import (
	"context"
	"log"
	"net/http"
	"time"

	"albaceo/db"
	"albaceo/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const dailySalesDays = 7

// DailySales is one bucket of the per-day series. Date is YYYY-MM-DD in UTC.
type DailySales struct {
	Date    string `json:"date" bson:"_id"`
	Sales   int64  `json:"sales" bson:"sales"`
	Revenue int64  `json:"revenue" bson:"revenue"`
}

// GetOverview returns headline counts plus the last seven days of sales.
// Mounted behind the admin middleware.
func GetOverview(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	totalUsers, err := db.UserCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Println("GetOverview user count error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	totalProducts, err := db.ProductCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Println("GetOverview product count error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	totalSales, totalRevenue, err := salesTotals(ctx)
	if err != nil {
		log.Println("GetOverview sales totals error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	daily, err := dailySales(ctx, time.Now().UTC())
	if err != nil {
		log.Println("GetOverview daily sales error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"totalUsers":    totalUsers,
		"totalProducts": totalProducts,
		"totalSales":    totalSales,
		"totalRevenue":  totalRevenue,
		"dailySales":    daily,
	})
}

func salesTotals(ctx context.Context) (sales int64, revenue int64, err error) {
	cursor, err := db.OrderCollection.Aggregate(ctx, []bson.M{
		{"$group": bson.M{
			"_id":     nil,
			"sales":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Sales   int64 `bson:"sales"`
		Revenue int64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Sales, results[0].Revenue, nil
}

// dailySales groups the last seven days of orders by calendar day and
// zero-fills days without sales so the chart axis stays continuous.
func dailySales(ctx context.Context, now time.Time) ([]DailySales, error) {
	end := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	start := end.AddDate(0, 0, -dailySalesDays)

	cursor, err := db.OrderCollection.Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"createdAt": bson.M{"$gte": start, "$lt": end},
		}},
		{"$group": bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"sales":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}},
		{"$sort": bson.M{"_id": 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []DailySales
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}

	return FillDateRange(buckets, start, dailySalesDays), nil
}

// FillDateRange expands sparse daily buckets into a dense series of n days
// starting at start, inserting zero buckets for missing days.
func FillDateRange(buckets []DailySales, start time.Time, n int) []DailySales {
	byDate := make(map[string]DailySales, len(buckets))
	for _, b := range buckets {
		byDate[b.Date] = b
	}

	series := make([]DailySales, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		if b, ok := byDate[date]; ok {
			series = append(series, b)
			continue
		}
		series = append(series, DailySales{Date: date})
	}
	return series
}
