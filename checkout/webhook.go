package checkout

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"albaceo/coupons"
	"albaceo/db"
	"albaceo/inventory"
	"albaceo/models"
	"albaceo/mq"
	"albaceo/stripe"
	"albaceo/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// maxWebhookBody bounds the raw payload read for signature verification.
const maxWebhookBody = 1 << 16

// HandleStripeWebhook processes payment provider events. The route is mounted
// without auth middleware; the Stripe-Signature check is the authentication.
//
// An error before the order insert returns non-2xx so Stripe retries the
// delivery. Once the order document exists every remaining step is best
// effort: failures are logged and the event is acked, and a replayed delivery
// hits the unique stripeSessionId index and becomes a no-op.
func HandleStripeWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to read request body")
		return
	}

	event, err := stripe.ConstructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Println("HandleStripeWebhook signature error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	if event.Type != stripe.EventCheckoutCompleted {
		log.Printf("HandleStripeWebhook: ignoring event %s of type %s", event.ID, event.Type)
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"received": true})
		return
	}

	if err := processCompletedSession(ctx, event.Session); err != nil {
		log.Printf("HandleStripeWebhook: processing session %s failed: %v", event.Session.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Event processing failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"received": true})
}

// processCompletedSession fulfils a paid session. The order insert comes
// first: its unique stripeSessionId index decides exactly one winner per
// session, and only the winner runs the side effects below it.
func processCompletedSession(ctx context.Context, sess *stripe.SessionDetails) error {
	userID := sess.Metadata["userId"]
	if userID == "" {
		return fmt.Errorf("session %s has no userId metadata", sess.ID)
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}

	order := BuildOrder(&user, sess)

	_, insertErr := db.OrderCollection.InsertOne(ctx, order)
	fulfil, err := FulfilmentAfterInsert(insertErr)
	if err != nil {
		return fmt.Errorf("insert order for session %s: %w", sess.ID, err)
	}
	if !fulfil {
		log.Printf("processCompletedSession: session %s already processed", sess.ID)
		return nil
	}

	// Order committed: from here on, only this delivery runs the fulfilment.

	if code := sess.Metadata["couponCode"]; code != "" {
		coupons.RedeemCoupon(ctx, code)
	}

	for _, p := range order.Products {
		ok, err := inventory.DecrementStock(ctx, p.ProductID, p.Quantity)
		if err != nil {
			log.Printf("processCompletedSession: stock decrement error for %s: %v", p.ProductID, err)
		} else if !ok {
			log.Printf("processCompletedSession: insufficient stock for %s (wanted %d), oversold", p.ProductID, p.Quantity)
		}
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set": bson.M{"cartItems": []models.CartItem{}},
			"$inc": bson.M{"totalOrders": 1},
		},
	); err != nil {
		log.Printf("processCompletedSession: cart clear failed for user %s: %v", userID, err)
	}

	issueRewards(ctx, userID, user.TotalOrders+1, sess.Metadata["totalAmountBeforeDiscount"])

	mq.EmitOrderConfirmation(ctx, &user, &order)
	return nil
}

// BuildOrder snapshots the user's cart and the provider-confirmed session
// details into an order document keyed by the session id.
func BuildOrder(user *models.User, sess *stripe.SessionDetails) models.Order {
	products := make([]models.OrderProduct, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		products = append(products, models.OrderProduct{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	return models.Order{
		OrderID:            uuid.NewString(),
		UserID:             user.UserID,
		Products:           products,
		TotalAmount:        sess.AmountTotal,
		StripeSessionID:    sess.ID,
		ShippingMethodName: sess.Metadata["shippingMethodName"],
		ShippingCost:       sess.ShippingCost,
		ShippingAddress: models.ShippingAddress{
			Name:       sess.Address.Name,
			Line1:      sess.Address.Line1,
			Line2:      sess.Address.Line2,
			City:       sess.Address.City,
			State:      sess.Address.State,
			PostalCode: sess.Address.PostalCode,
			Country:    sess.Address.Country,
		},
		CreatedAt: time.Now(),
	}
}

// FulfilmentAfterInsert decides what the order insert outcome means: a clean
// insert fulfils, a duplicate-key violation is a replayed delivery (the
// winner already fulfilled), anything else goes back to the provider as a
// retryable failure.
func FulfilmentAfterInsert(insertErr error) (fulfil bool, err error) {
	if insertErr == nil {
		return true, nil
	}
	if db.IsDuplicateKeyError(insertErr) {
		return false, nil
	}
	return false, insertErr
}

// issueRewards applies both post-purchase coupon rules. The milestone reward
// is unconditional; the spend-tier reward is suppressed when the user already
// holds an unused exclusive coupon at or above the tier.
func issueRewards(ctx context.Context, userID string, totalOrders int, preDiscountTotal string) {
	if coupons.MilestoneReached(totalOrders) {
		if _, err := coupons.CreateRewardCoupon(ctx, userID, coupons.MilestonePercentage); err != nil {
			log.Printf("issueRewards: milestone coupon failed for user %s: %v", userID, err)
		}
	}

	total, err := strconv.ParseInt(preDiscountTotal, 10, 64)
	if err != nil {
		log.Printf("issueRewards: bad totalAmountBeforeDiscount %q for user %s", preDiscountTotal, userID)
		return
	}
	pct := coupons.RewardTierFor(total)
	if pct == 0 {
		return
	}

	has, err := coupons.HasQualifyingRewardCoupon(ctx, userID, pct)
	if err != nil {
		log.Printf("issueRewards: reward lookup failed for user %s: %v", userID, err)
		return
	}
	if has {
		return
	}
	if _, err := coupons.CreateRewardCoupon(ctx, userID, pct); err != nil {
		log.Printf("issueRewards: tier coupon failed for user %s: %v", userID, err)
	}
}
