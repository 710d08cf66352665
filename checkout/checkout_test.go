package checkout

import (
	"strconv"
	"testing"
	"time"

	"albaceo/cart"
	"albaceo/coupons"
	"albaceo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingCost(t *testing.T) {
	assert.Equal(t, int64(3000), ShippingCost("standard"))
	assert.Equal(t, int64(7000), ShippingCost("express"))
	assert.Equal(t, int64(0), ShippingCost(""))
	assert.Equal(t, int64(0), ShippingCost("overnight"))
}

func line(id string, qty int, snapshot int64, p *models.Product) cart.PopulatedItem {
	return cart.PopulatedItem{
		Item: models.CartItem{
			ProductID: id,
			Quantity:  qty,
			Price:     snapshot,
			AddedAt:   time.Now(),
		},
		Product: p,
	}
}

func TestReconcile(t *testing.T) {
	mug := &models.Product{ProductID: "p1", Name: "Mug", Price: 1200, Stock: 10}
	lamp := &models.Product{ProductID: "p2", Name: "Lamp", Price: 4500, Stock: 1}
	desk := &models.Product{ProductID: "p3", Name: "Desk", Price: 30000, Stock: 5}

	populated := []cart.PopulatedItem{
		line("p1", 2, 1200, mug),     // fine
		line("p2", 3, 4500, lamp),    // stock 1 < quantity 3
		line("p3", 1, 25000, desk),   // price moved 25000 -> 30000
		line("p4", 1, 900, nil),      // product deleted
	}

	valid, removed := Reconcile(populated)

	require.Len(t, valid, 1)
	assert.Equal(t, "p1", valid[0].Item.ProductID)

	require.Len(t, removed, 3)
	byID := map[string]string{}
	for _, rm := range removed {
		byID[rm.ID] = rm.Reason
	}
	assert.Contains(t, byID["p2"], "stock")
	assert.Contains(t, byID["p3"], "price")
	assert.Contains(t, byID["p4"], "no longer available")
}

func TestReconcileCleanCart(t *testing.T) {
	mug := &models.Product{ProductID: "p1", Name: "Mug", Price: 1200, Stock: 2}
	valid, removed := Reconcile([]cart.PopulatedItem{line("p1", 2, 1200, mug)})
	assert.Len(t, valid, 1)
	assert.Empty(t, removed)
}

func TestBuildLineItems(t *testing.T) {
	mug := &models.Product{ProductID: "p1", Name: "Mug", Price: 1200, Stock: 10, Image: "/static/productpic/mug.jpg"}
	desk := &models.Product{ProductID: "p3", Name: "Desk", Price: 30000, Stock: 5}

	items, total := BuildLineItems([]cart.PopulatedItem{
		line("p1", 2, 1200, mug),
		line("p3", 1, 30000, desk),
	})

	require.Len(t, items, 2)
	assert.Equal(t, int64(2400+30000), total)
	assert.Equal(t, "Mug", items[0].Name)
	assert.Equal(t, int64(1200), items[0].UnitAmount)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, "/static/productpic/mug.jpg", items[0].Image)
	assert.Equal(t, int64(30000), items[1].UnitAmount)
}

func TestBuildLineItemsEmpty(t *testing.T) {
	items, total := BuildLineItems(nil)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestSessionMetadata(t *testing.T) {
	md := SessionMetadata("u1", "SUMMER10", 49000, "express")

	assert.Equal(t, "u1", md["userId"])
	assert.Equal(t, "SUMMER10", md["couponCode"])
	assert.Equal(t, "express", md["shippingMethodName"])
	// goods total only: the 7000-cent express fee must not leak into the
	// figure the reward tiers are derived from
	assert.Equal(t, "49000", md["totalAmountBeforeDiscount"])
}

func TestSessionMetadataTotalKeepsRewardTier(t *testing.T) {
	md := SessionMetadata("u1", "", 49000, "express")

	total, err := strconv.ParseInt(md["totalAmountBeforeDiscount"], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, 10, coupons.RewardTierFor(total))
	// folding shipping in would have crossed the 50000 boundary
	assert.Equal(t, 25, coupons.RewardTierFor(total+ShippingCost("express")))
}

func TestStripeCouponHandle(t *testing.T) {
	c := &models.Coupon{Code: "SUMMER10", StripeCouponID: "sc_123"}
	id, err := StripeCouponHandle(c)
	require.NoError(t, err)
	assert.Equal(t, "sc_123", id)

	_, err = StripeCouponHandle(&models.Coupon{Code: "LOCAL_ONLY"})
	assert.Error(t, err)
}
