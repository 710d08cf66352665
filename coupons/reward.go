package coupons

import (
	"context"
	"fmt"
	"log"
	"time"

	"albaceo/db"
	"albaceo/models"
	"albaceo/stripe"
	"albaceo/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// MilestonePercentage is awarded every MilestoneOrders-th successful order.
	MilestonePercentage = 20
	MilestoneOrders     = 3

	rewardValidity = 7 * 24 * time.Hour
	codeBytes      = 6
	maxCodeRetries = 10
)

// RewardTierFor maps a pre-discount order total (cents) to the reward coupon
// percentage it earns. Zero means no reward.
func RewardTierFor(totalAmount int64) int {
	switch {
	case totalAmount > 100000:
		return 40
	case totalAmount > 50000:
		return 25
	case totalAmount > 20000:
		return 10
	default:
		return 0
	}
}

// MilestoneReached reports whether totalOrders just hit a reward milestone.
func MilestoneReached(totalOrders int) bool {
	return totalOrders > 0 && totalOrders%MilestoneOrders == 0
}

// CreateRewardCoupon issues a fresh exclusive coupon for the user: a random
// unique code, a 7-day validity window, and a mirrored Stripe discount
// handle. Code collisions are resolved by retrying the draw.
func CreateRewardCoupon(ctx context.Context, userID string, discountPercentage int) (*models.Coupon, error) {
	code, err := uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	stripeCouponID, err := stripe.CreateCoupon(discountPercentage)
	if err != nil {
		return nil, err
	}

	expires := time.Now().Add(rewardValidity)
	coupon := models.Coupon{
		CouponID:           uuid.NewString(),
		Code:               code,
		DiscountPercentage: discountPercentage,
		ExpirationDate:     &expires,
		IsActive:           true,
		UserID:             userID,
		StripeCouponID:     stripeCouponID,
		CreatedAt:          time.Now(),
	}

	if _, err := db.CouponCollection.InsertOne(ctx, coupon); err != nil {
		return nil, fmt.Errorf("insert reward coupon: %w", err)
	}
	return &coupon, nil
}

// HasQualifyingRewardCoupon reports whether the user already holds an unused,
// active, exclusive coupon at or above the given percentage. Used to stop
// reward coupons from accumulating.
func HasQualifyingRewardCoupon(ctx context.Context, userID string, percentage int) (bool, error) {
	err := db.CouponCollection.FindOne(ctx, bson.M{
		"userId":             userID,
		"discountPercentage": bson.M{"$gte": percentage},
		"isUsed":             false,
		"isActive":           true,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RedeemCoupon applies the confirmed-payment usage bookkeeping: exclusive
// coupons flip to used, public coupons get an atomic usage increment and are
// deactivated once the limit is reached. Scoped $inc/$set updates keep
// concurrent redemptions of the same public coupon safe.
func RedeemCoupon(ctx context.Context, code string) {
	var coupon models.Coupon
	if err := db.CouponCollection.FindOne(ctx, bson.M{"code": code}).Decode(&coupon); err != nil {
		log.Printf("RedeemCoupon: coupon %q not found: %v", code, err)
		return
	}

	if coupon.Exclusive() {
		if _, err := db.CouponCollection.UpdateOne(ctx,
			bson.M{"_id": coupon.CouponID},
			bson.M{"$set": bson.M{"isUsed": true}},
		); err != nil {
			log.Printf("RedeemCoupon: mark used failed for %q: %v", code, err)
		}
		return
	}

	var updated models.Coupon
	err := db.CouponCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": coupon.CouponID},
		bson.M{"$inc": bson.M{"usageCount": 1}},
	).Decode(&updated)
	if err != nil {
		log.Printf("RedeemCoupon: usage increment failed for %q: %v", code, err)
		return
	}

	// FindOneAndUpdate returned the pre-increment document
	if DeactivateAtLimit(coupon.UsageLimit, updated.UsageCount+1) {
		if _, err := db.CouponCollection.UpdateOne(ctx,
			bson.M{"_id": coupon.CouponID, "usageCount": bson.M{"$gte": coupon.UsageLimit}},
			bson.M{"$set": bson.M{"isActive": false}},
		); err != nil {
			log.Printf("RedeemCoupon: deactivate at limit failed for %q: %v", code, err)
		}
	}
}

// DeactivateAtLimit reports whether a public coupon has exhausted its usage
// limit after the count reached countAfter. Zero limit means unlimited.
func DeactivateAtLimit(usageLimit, countAfter int) bool {
	return usageLimit > 0 && countAfter >= usageLimit
}

func uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeRetries; i++ {
		code := utils.GenerateCouponCode(codeBytes)
		err := db.CouponCollection.FindOne(ctx, bson.M{"code": code}).Err()
		if err == mongo.ErrNoDocuments {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not draw a unique coupon code after %d attempts", maxCodeRetries)
}
