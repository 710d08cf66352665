// Package checkout owns the payment flow: cart reconciliation, Stripe session
// issuance, the confirmed-payment webhook, and session verification. Nothing
// here mutates stock, coupons, or orders except the webhook processor.
package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"albaceo/apperr"
	"albaceo/cart"
	"albaceo/db"
	"albaceo/models"
	"albaceo/stripe"
	"albaceo/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	shippingStandard = "standard"
	shippingExpress  = "express"
)

// ShippingCost maps a shipping method to its flat cost in cents. Unknown
// methods ship free rather than failing the checkout.
func ShippingCost(method string) int64 {
	switch method {
	case shippingStandard:
		return 3000
	case shippingExpress:
		return 7000
	default:
		return 0
	}
}

// Reconcile splits the populated cart into lines that can be purchased as-is
// and lines that must be dropped first: the product is gone, stock no longer
// covers the quantity, or the live price moved away from the cart snapshot.
func Reconcile(populated []cart.PopulatedItem) (valid []cart.PopulatedItem, removed []apperr.RemovedItem) {
	valid = []cart.PopulatedItem{}
	for _, p := range populated {
		switch {
		case p.Product == nil:
			removed = append(removed, apperr.RemovedItem{
				ID:     p.Item.ProductID,
				Name:   "Unknown product",
				Reason: "This product is no longer available.",
			})
		case p.Product.Stock < p.Item.Quantity:
			removed = append(removed, apperr.RemovedItem{
				ID:     p.Product.ProductID,
				Name:   p.Product.Name,
				Reason: "Not enough stock left for the requested quantity.",
			})
		case p.Product.Price != p.Item.Price:
			removed = append(removed, apperr.RemovedItem{
				ID:     p.Product.ProductID,
				Name:   p.Product.Name,
				Reason: "The price of this product has changed since it was added.",
			})
		default:
			valid = append(valid, p)
		}
	}
	return valid, removed
}

// BuildLineItems prices the reconciled cart from the live product documents
// and returns the pre-discount goods total in cents.
func BuildLineItems(valid []cart.PopulatedItem) ([]stripe.LineItem, int64) {
	items := make([]stripe.LineItem, 0, len(valid))
	var total int64
	for _, p := range valid {
		items = append(items, stripe.LineItem{
			Name:       p.Product.Name,
			Image:      p.Product.Image,
			UnitAmount: p.Product.Price,
			Quantity:   int64(p.Item.Quantity),
		})
		total += p.Product.Price * int64(p.Item.Quantity)
	}
	return items, total
}

// CreateCheckoutSession reconciles the cart and opens a Stripe session.
//
// When reconciliation drops items and the client has not confirmed, the
// filtered cart is persisted first and the request fails with 422 carrying the
// removal list: a confirmed retry then runs against a cart that genuinely
// excludes those items.
func CreateCheckoutSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ShippingMethod string `json:"shippingMethod"`
		CouponCode     string `json:"couponCode,omitempty"`
		Confirmed      bool   `json:"confirmed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if len(user.CartItems) == 0 {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Cart is empty")
		return
	}

	populated, err := cart.Populate(ctx, user.CartItems)
	if err != nil {
		log.Println("CreateCheckoutSession populate error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	valid, removed := Reconcile(populated)
	if len(removed) > 0 {
		// The webhook builds the order from the stored cart, so the stored
		// cart must never contain lines the session will not charge for.
		filtered := make([]models.CartItem, 0, len(valid))
		for _, p := range valid {
			filtered = append(filtered, p.Item)
		}
		if _, err := db.UserCollection.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"cartItems": filtered}},
		); err != nil {
			log.Println("CreateCheckoutSession persist filtered cart error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
			return
		}
		if !input.Confirmed {
			utils.RespondWithAppError(w, apperr.Conflict(
				"Some items in your cart were updated. Please review your cart before continuing.", removed))
			return
		}
	}
	if len(valid) == 0 {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Cart is empty")
		return
	}

	stripeCouponID := ""
	if input.CouponCode != "" {
		id, err := resolveCoupon(ctx, input.CouponCode)
		if err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
		stripeCouponID = id
	}

	lineItems, goodsTotal := BuildLineItems(valid)

	sess, err := stripe.CreateCheckoutSession(stripe.SessionRequest{
		LineItems:          lineItems,
		ShippingMethodName: input.ShippingMethod,
		ShippingCost:       ShippingCost(input.ShippingMethod),
		StripeCouponID:     stripeCouponID,
		Metadata:           SessionMetadata(userID, input.CouponCode, goodsTotal, input.ShippingMethod),
	})
	if err != nil {
		log.Println("CreateCheckoutSession stripe error:", err)
		utils.RespondWithError(w, http.StatusBadGateway, "Payment provider is unavailable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"sessionId":   sess.ID,
		"url":         sess.URL,
		"totalAmount": goodsTotal,
	})
}

// SessionMetadata builds the string pairs persisted on the Stripe session.
// The pre-discount total is the goods total alone: shipping is its own line
// on the session and must not shift the reward tier the webhook derives from
// this figure.
func SessionMetadata(userID, couponCode string, goodsTotal int64, shippingMethod string) map[string]string {
	return map[string]string{
		"userId":                    userID,
		"couponCode":                couponCode,
		"totalAmountBeforeDiscount": strconv.FormatInt(goodsTotal, 10),
		"shippingMethodName":        shippingMethod,
	}
}

// resolveCoupon maps a coupon code to its Stripe discount handle. Eligibility
// is the validation endpoint's job before checkout and the webhook's job
// after payment; session issuance only needs the handle.
func resolveCoupon(ctx context.Context, code string) (string, error) {
	var c models.Coupon
	if err := db.CouponCollection.FindOne(ctx, bson.M{"code": code}).Decode(&c); err != nil {
		return "", apperr.New(apperr.NotFound, "Coupon is invalid.")
	}
	return StripeCouponHandle(&c)
}

// StripeCouponHandle returns the provider-side discount id a session can
// reference. A coupon without one was never mirrored and cannot discount a
// session.
func StripeCouponHandle(c *models.Coupon) (string, error) {
	if c.StripeCouponID == "" {
		return "", apperr.New(apperr.Internal, "Coupon is not usable at checkout.")
	}
	return c.StripeCouponID, nil
}
