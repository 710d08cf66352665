package orders

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"albaceo/cart"
	"albaceo/db"
	"albaceo/globals"
	"albaceo/models"
	"albaceo/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// InvoicePayload returns the signed string embedded in the invoice QR code:
// orderId|sessionId|timestamp|signature. Support staff scan it to pull up the
// order without trusting the printed text.
func InvoicePayload(orderID, sessionID string) string {
	data := fmt.Sprintf("%s|%s|%d", orderID, sessionID, time.Now().Unix())

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyInvoicePayload checks the signature on a scanned QR payload and
// returns the order id it vouches for.
func VerifyInvoicePayload(payload string) (string, bool) {
	// orderId|sessionId|timestamp|signature: signature covers the first three
	idx := lastPipe(payload)
	if idx < 0 {
		return "", false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}

	end := 0
	for end < len(data) && data[end] != '|' {
		end++
	}
	return data[:end], true
}

func lastPipe(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '|' {
			return i
		}
	}
	return -1
}

// VerifyInvoice resolves a scanned invoice QR payload to its order (admin
// only, for support staff). The signature check runs before any lookup so a
// forged payload never touches the database.
func VerifyInvoice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Payload == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "payload is required")
		return
	}

	orderID, ok := VerifyInvoicePayload(input.Payload)
	if !ok {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Invoice signature is invalid")
		return
	}

	var order models.Order
	if err := db.OrderCollection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"orderId":            order.OrderID,
		"userId":             order.UserID,
		"totalAmount":        order.TotalAmount,
		"shippingMethodName": order.ShippingMethodName,
		"createdAt":          order.CreatedAt,
	})
}

// DownloadInvoice renders the order as a PDF invoice with a signed QR code.
func DownloadInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var order models.Order
	err := db.OrderCollection.FindOne(ctx,
		bson.M{"_id": ps.ByName("id"), "userId": userID},
	).Decode(&order)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		log.Println("DownloadInvoice user lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	qrPNG, err := qrcode.Encode(InvoicePayload(order.OrderID, order.StripeSessionID), qrcode.Medium, 256)
	if err != nil {
		log.Println("DownloadInvoice QR error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate invoice")
		return
	}

	buf, err := renderInvoicePDF(ctx, &order, &user, qrPNG)
	if err != nil {
		log.Println("DownloadInvoice render error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+order.OrderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func renderInvoicePDF(ctx context.Context, order *models.Order, user *models.User, qrPNG []byte) (*bytes.Buffer, error) {
	names := productNames(ctx, order)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", order.OrderID))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Customer: %s (%s)", user.Name, user.Email))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Placed: %s", order.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Product", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, p := range order.Products {
		name := names[p.ProductID]
		if name == "" {
			name = p.ProductID
		}
		pdf.CellFormat(90, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", p.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, formatCents(p.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, formatCents(p.Price*int64(p.Quantity)), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.Cell(0, 8, fmt.Sprintf("Shipping (%s): %s", order.ShippingMethodName, formatCents(order.ShippingCost)))
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total charged: %s", formatCents(order.TotalAmount)))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 155, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// productNames resolves current product names for the invoice lines. Deleted
// products fall back to their id; the monetary snapshot never changes.
func productNames(ctx context.Context, order *models.Order) map[string]string {
	items := make([]models.CartItem, 0, len(order.Products))
	for _, p := range order.Products {
		items = append(items, models.CartItem{ProductID: p.ProductID})
	}
	names := map[string]string{}
	populated, err := cart.Populate(ctx, items)
	if err != nil {
		log.Println("productNames populate error:", err)
		return names
	}
	for _, p := range populated {
		if p.Product != nil {
			names[p.Item.ProductID] = p.Product.Name
		}
	}
	return names
}

func formatCents(amount int64) string {
	return fmt.Sprintf("$%d.%02d", amount/100, amount%100)
}
