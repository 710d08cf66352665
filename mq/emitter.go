// Package mq publishes storefront events to Redis channels. Delivery is
// fire-and-forget: a failed publish is logged and never fails the caller.
package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"albaceo/models"
	"albaceo/rdx"
)

const orderEventsChannel = "order-events"

// OrderConfirmation is consumed by the notification worker (mail sender)
// listening on the order-events channel.
type OrderConfirmation struct {
	OrderID            string    `json:"orderId"`
	UserID             string    `json:"userId"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	TotalAmount        int64     `json:"totalAmount"`
	ShippingMethodName string    `json:"shippingMethodName"`
	PlacedAt           time.Time `json:"placedAt"`
}

// EmitOrderConfirmation publishes the confirmation event for a freshly
// persisted order. Best effort by design: the order has already committed.
func EmitOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) {
	event := OrderConfirmation{
		OrderID:            order.OrderID,
		UserID:             user.UserID,
		Email:              user.Email,
		Name:               user.Name,
		TotalAmount:        order.TotalAmount,
		ShippingMethodName: order.ShippingMethodName,
		PlacedAt:           order.CreatedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("EmitOrderConfirmation marshal error: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, orderEventsChannel, data).Err(); err != nil {
		log.Printf("EmitOrderConfirmation publish error for order %s: %v", order.OrderID, err)
	}
}
