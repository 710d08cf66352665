package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"albaceo/db"
	"albaceo/models"
	"albaceo/stripe"
	"albaceo/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// VerifySession lets the success page confirm the outcome of a session. Only
// the webhook creates orders, so a paid session without an order simply
// hasn't been processed yet and the client should retry.
//
// Responses: 409 when the order exists (already processed, with its id),
// 404 when paid but the order is still pending, 402 when not paid.
func VerifySession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.SessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	var order models.Order
	err := db.OrderCollection.FindOne(ctx,
		bson.M{"stripeSessionId": input.SessionID, "userId": userID},
	).Decode(&order)
	if err == nil {
		utils.RespondWithJSON(w, http.StatusConflict, utils.M{
			"message":            "This session has already been processed.",
			"orderId":            order.OrderID,
			"shippingMethodName": order.ShippingMethodName,
		})
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Println("VerifySession order lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	details, err := stripe.RetrieveSession(input.SessionID)
	if err != nil {
		log.Println("VerifySession retrieve error:", err)
		utils.RespondWithError(w, http.StatusBadGateway, "Payment provider is unavailable")
		return
	}

	if !details.Paid {
		utils.RespondWithError(w, http.StatusPaymentRequired, "Payment has not been completed for this session.")
		return
	}

	// Paid, order not written yet: the webhook is still in flight.
	utils.RespondWithError(w, http.StatusNotFound, "Order not found for this session yet. Please try again shortly.")
}
