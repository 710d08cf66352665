package checkout

import (
	"errors"
	"testing"

	"albaceo/models"
	"albaceo/stripe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFulfilmentAfterInsert(t *testing.T) {
	// clean insert: this delivery won and fulfils the order
	fulfil, err := FulfilmentAfterInsert(nil)
	assert.True(t, fulfil)
	assert.NoError(t, err)

	// duplicate key on stripeSessionId: a replayed delivery, skip silently
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}},
	}
	fulfil, err = FulfilmentAfterInsert(dup)
	assert.False(t, fulfil)
	assert.NoError(t, err)

	// anything else must surface so the provider retries the delivery
	boom := errors.New("connection reset")
	fulfil, err = FulfilmentAfterInsert(boom)
	assert.False(t, fulfil)
	assert.Equal(t, boom, err)
}

func TestBuildOrder(t *testing.T) {
	user := &models.User{
		UserID: "u1",
		CartItems: []models.CartItem{
			{ProductID: "p1", Quantity: 2, Price: 1200},
			{ProductID: "p2", Quantity: 1, Price: 30000},
		},
	}
	sess := &stripe.SessionDetails{
		ID:           "cs_test_1",
		Paid:         true,
		AmountTotal:  35400,
		ShippingCost: 3000,
		Address:      stripe.Address{Name: "Ada", Line1: "1 Main St", City: "Springfield", Country: "US"},
		Metadata: map[string]string{
			"userId":             "u1",
			"shippingMethodName": "standard",
		},
	}

	order := BuildOrder(user, sess)

	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, "cs_test_1", order.StripeSessionID)
	assert.Equal(t, int64(35400), order.TotalAmount)
	assert.Equal(t, "standard", order.ShippingMethodName)
	assert.Equal(t, int64(3000), order.ShippingCost)
	assert.Equal(t, "Ada", order.ShippingAddress.Name)
	assert.Equal(t, "Springfield", order.ShippingAddress.City)

	require.Len(t, order.Products, 2)
	assert.Equal(t, models.OrderProduct{ProductID: "p1", Quantity: 2, Price: 1200}, order.Products[0])
	assert.Equal(t, models.OrderProduct{ProductID: "p2", Quantity: 1, Price: 30000}, order.Products[1])
}

func TestBuildOrderDistinctIDs(t *testing.T) {
	user := &models.User{UserID: "u1"}
	sess := &stripe.SessionDetails{ID: "cs_test_2", Metadata: map[string]string{}}

	a := BuildOrder(user, sess)
	b := BuildOrder(user, sess)
	assert.NotEqual(t, a.OrderID, b.OrderID)
	// both still carry the same session key, so only one can ever insert
	assert.Equal(t, a.StripeSessionID, b.StripeSessionID)
}
