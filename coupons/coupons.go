package coupons

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"albaceo/apperr"
	"albaceo/db"
	"albaceo/models"
	"albaceo/stripe"
	"albaceo/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// FirstPurchaseCode is a permanent public coupon restricted to users with no
// prior orders.
const FirstPurchaseCode = "FIRST_PURCHASE"

// CreateCoupon registers a coupon (admin only). The coupon is mirrored in
// Stripe first so checkout sessions can reference it as a discount handle.
func CreateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var input struct {
		Code               string     `json:"code"`
		DiscountPercentage int        `json:"discountPercentage"`
		ExpirationDate     *time.Time `json:"expirationDate,omitempty"`
		UserID             string     `json:"userId,omitempty"`
		UsageLimit         int        `json:"usageLimit,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Code == "" || input.DiscountPercentage < 0 || input.DiscountPercentage > 100 {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "A code and a discount percentage between 0 and 100 are required")
		return
	}

	stripeCouponID, err := stripe.CreateCoupon(input.DiscountPercentage)
	if err != nil {
		log.Println("CreateCoupon stripe error:", err)
		utils.RespondWithError(w, http.StatusBadGateway, "Payment provider is unavailable")
		return
	}

	coupon := models.Coupon{
		CouponID:           uuid.NewString(),
		Code:               input.Code,
		DiscountPercentage: input.DiscountPercentage,
		ExpirationDate:     input.ExpirationDate,
		IsActive:           true,
		UsageLimit:         input.UsageLimit,
		UserID:             input.UserID,
		StripeCouponID:     stripeCouponID,
		CreatedAt:          time.Now(),
	}

	if _, err := db.CouponCollection.InsertOne(ctx, coupon); err != nil {
		if db.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Coupon code already exists")
			return
		}
		log.Println("CreateCoupon InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"coupon":  coupon,
		"message": "Coupon created successfully",
	})
}

// GetCoupons lists coupons the requesting user could apply: active, not
// expired, and either public or bound to them.
func GetCoupons(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := bson.M{
		"isActive": true,
		"$and": []bson.M{
			{"$or": []bson.M{
				{"userId": bson.M{"$exists": false}},
				{"userId": ""},
				{"userId": userID},
			}},
			{"$or": []bson.M{
				{"expirationDate": bson.M{"$exists": false}},
				{"expirationDate": bson.M{"$gt": time.Now()}},
			}},
		},
	}

	cursor, err := db.CouponCollection.Find(ctx, filter)
	if err != nil {
		log.Println("GetCoupons Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}
	defer cursor.Close(ctx)

	coupons := []models.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		log.Println("GetCoupons cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, coupons)
}

// ValidateCoupon runs the redemption state machine for the requesting user.
// It never mutates the coupon; usage bookkeeping happens only inside the
// confirmed-payment webhook.
func ValidateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "code is required")
		return
	}

	var coupon models.Coupon
	err := db.CouponCollection.FindOne(ctx, bson.M{"code": input.Code, "isActive": true}).Decode(&coupon)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Coupon is invalid.")
		return
	}

	hasOrders := false
	if coupon.Code == FirstPurchaseCode {
		count, err := db.OrderCollection.CountDocuments(ctx, bson.M{"userId": userID})
		if err != nil {
			log.Println("ValidateCoupon order count error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
			return
		}
		hasOrders = count > 0
	}

	if err := Redeemable(&coupon, userID, hasOrders, time.Now()); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":            "coupon is valid",
		"code":               coupon.Code,
		"discountPercentage": coupon.DiscountPercentage,
	})
}

// Redeemable decides whether userID may redeem the coupon right now. The
// exclusive path checks ownership and the single-use flag; the public path
// checks the usage counter against its limit.
func Redeemable(c *models.Coupon, userID string, hasOrders bool, now time.Time) error {
	if !c.IsActive {
		return apperr.New(apperr.NotFound, "Coupon is invalid.")
	}
	if c.Expired(now) {
		return apperr.New(apperr.StateConflict, "Coupon expired")
	}
	if c.Code == FirstPurchaseCode && hasOrders {
		return apperr.New(apperr.StateConflict, "This coupon is only for first-time purchases.")
	}

	if c.Exclusive() {
		if c.UserID != userID {
			return apperr.New(apperr.Auth, "This coupon is not for you.")
		}
		if c.IsUsed {
			return apperr.New(apperr.NotFound, "Coupon has already been used.")
		}
		return nil
	}

	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return apperr.New(apperr.NotFound, "Coupon has reached its usage limit.")
	}
	return nil
}
