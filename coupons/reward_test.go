package coupons

import (
	"testing"
	"time"

	"albaceo/apperr"
	"albaceo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardTierFor(t *testing.T) {
	cases := []struct {
		total int64
		want  int
	}{
		{0, 0},
		{20000, 0},
		{20001, 10},
		{50000, 10},
		{50001, 25},
		{55000, 25},
		{100000, 25},
		{100001, 40},
		{250000, 40},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RewardTierFor(c.total), "total=%d", c.total)
	}
}

func TestMilestoneReached(t *testing.T) {
	assert.False(t, MilestoneReached(0))
	assert.False(t, MilestoneReached(1))
	assert.False(t, MilestoneReached(2))
	assert.True(t, MilestoneReached(3))
	assert.False(t, MilestoneReached(4))
	assert.False(t, MilestoneReached(5))
	assert.True(t, MilestoneReached(6))
	assert.True(t, MilestoneReached(9))
}

func TestDeactivateAtLimit(t *testing.T) {
	// unlimited public coupon never deactivates
	assert.False(t, DeactivateAtLimit(0, 1))
	assert.False(t, DeactivateAtLimit(0, 9999))

	assert.False(t, DeactivateAtLimit(3, 2))
	assert.True(t, DeactivateAtLimit(3, 3))
	// concurrent increments can overshoot; still deactivates
	assert.True(t, DeactivateAtLimit(3, 4))
}

func exclusiveCoupon(userID string) *models.Coupon {
	expires := time.Now().Add(24 * time.Hour)
	return &models.Coupon{
		CouponID:           "c1",
		Code:               "REWARD25",
		DiscountPercentage: 25,
		ExpirationDate:     &expires,
		IsActive:           true,
		UserID:             userID,
	}
}

func TestRedeemableExclusive(t *testing.T) {
	now := time.Now()

	c := exclusiveCoupon("u1")
	assert.NoError(t, Redeemable(c, "u1", false, now))

	// wrong owner
	err := Redeemable(c, "u2", false, now)
	require.Error(t, err)
	assert.Equal(t, apperr.Auth, err.(*apperr.Error).Kind)

	// already used: rejected for any user, permanently
	c.IsUsed = true
	err = Redeemable(c, "u1", false, now)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, err.(*apperr.Error).Kind)
}

func TestRedeemablePublicUsageLimit(t *testing.T) {
	now := time.Now()
	c := &models.Coupon{
		Code:               "SUMMER10",
		DiscountPercentage: 10,
		IsActive:           true,
		UsageLimit:         3,
		UsageCount:         2,
	}
	assert.NoError(t, Redeemable(c, "anyone", false, now))

	c.UsageCount = 3
	err := Redeemable(c, "anyone", false, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage limit")

	// no limit set: unlimited public coupon
	c.UsageLimit = 0
	c.UsageCount = 9999
	assert.NoError(t, Redeemable(c, "anyone", false, now))
}

func TestRedeemableExpiryAndActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	c := exclusiveCoupon("u1")
	c.ExpirationDate = &past
	err := Redeemable(c, "u1", false, now)
	require.Error(t, err)
	assert.Equal(t, apperr.StateConflict, err.(*apperr.Error).Kind)

	c = exclusiveCoupon("u1")
	c.IsActive = false
	assert.Error(t, Redeemable(c, "u1", false, now))

	// no expiration date at all is fine
	c = exclusiveCoupon("u1")
	c.ExpirationDate = nil
	assert.NoError(t, Redeemable(c, "u1", false, now))
}

func TestRedeemableFirstPurchase(t *testing.T) {
	now := time.Now()
	c := &models.Coupon{
		Code:               FirstPurchaseCode,
		DiscountPercentage: 15,
		IsActive:           true,
	}
	assert.NoError(t, Redeemable(c, "u1", false, now))

	err := Redeemable(c, "u1", true, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first-time")
}
