package models

import "time"

// Coupon is either exclusive (UserID set, single use, tracked via IsUsed) or
// public (no UserID, tracked via UsageCount against UsageLimit). Coupons are
// never deleted, only deactivated. All usage-state mutation happens inside the
// confirmed-payment webhook transaction.
type Coupon struct {
	CouponID           string     `json:"couponId" bson:"_id"`
	Code               string     `json:"code" bson:"code"`
	DiscountPercentage int        `json:"discountPercentage" bson:"discountPercentage"`
	ExpirationDate     *time.Time `json:"expirationDate,omitempty" bson:"expirationDate,omitempty"`
	IsActive           bool       `json:"isActive" bson:"isActive"`
	UsageCount         int        `json:"usageCount" bson:"usageCount"`
	UsageLimit         int        `json:"usageLimit,omitempty" bson:"usageLimit,omitempty"`
	IsUsed             bool       `json:"isUsed" bson:"isUsed"`
	UserID             string     `json:"userId,omitempty" bson:"userId,omitempty"`
	StripeCouponID     string     `json:"-" bson:"stripeCouponId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt" bson:"createdAt"`
}

// Exclusive reports whether the coupon is bound to a single user.
func (c *Coupon) Exclusive() bool { return c.UserID != "" }

// Expired reports whether the coupon's expiration date, if any, has passed.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate != nil && c.ExpirationDate.Before(now)
}
