// Package stripe wraps the Stripe SDK behind the narrow surface the checkout
// flow needs: session create/retrieve, coupon mirroring, and webhook
// signature verification. Handlers never touch SDK types directly.
package stripe

import (
	"encoding/json"
	"fmt"
	"os"

	stripeapi "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/coupon"
	"github.com/stripe/stripe-go/v80/webhook"
)

var (
	webhookSecret string
	clientURL     string
)

// Init configures the SDK key and webhook secret. Called once from main.
func Init() error {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	stripeapi.Key = key

	webhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}

	clientURL = os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:5173"
	}
	return nil
}

// LineItem is one priced cart line. UnitAmount is in cents and always comes
// from the live product document, never from client input.
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest carries everything needed to open a checkout session.
// Metadata values must be strings; Stripe persists metadata as string pairs.
type SessionRequest struct {
	LineItems          []LineItem
	ShippingMethodName string
	ShippingCost       int64
	StripeCouponID     string
	Metadata           map[string]string
}

type Session struct {
	ID  string
	URL string
}

// Address mirrors the shipping address block Stripe collects.
type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// SessionDetails is the provider-side view of a session, used by the webhook
// processor and the verification endpoint.
type SessionDetails struct {
	ID           string
	Paid         bool
	AmountTotal  int64
	ShippingCost int64
	Address      Address
	Metadata     map[string]string
}

// CreateCheckoutSession opens a payment session. Shipping is attached as a
// fixed-amount shipping option so Stripe collects the address itself, and the
// success URL carries the {CHECKOUT_SESSION_ID} template Stripe fills in.
func CreateCheckoutSession(req SessionRequest) (*Session, error) {
	lineItems := make([]*stripeapi.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		item := &stripeapi.CheckoutSessionLineItemParams{
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency: stripeapi.String("usd"),
				ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeapi.String(li.Name),
				},
				UnitAmount: stripeapi.Int64(li.UnitAmount),
			},
			Quantity: stripeapi.Int64(li.Quantity),
		}
		if li.Image != "" {
			item.PriceData.ProductData.Images = stripeapi.StringSlice([]string{li.Image})
		}
		lineItems = append(lineItems, item)
	}

	params := &stripeapi.CheckoutSessionParams{
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		Mode:               stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		ShippingOptions: []*stripeapi.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripeapi.CheckoutSessionShippingOptionShippingRateDataParams{
					Type: stripeapi.String("fixed_amount"),
					FixedAmount: &stripeapi.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripeapi.Int64(req.ShippingCost),
						Currency: stripeapi.String("usd"),
					},
					DisplayName: stripeapi.String(req.ShippingMethodName),
				},
			},
		},
		SuccessURL: stripeapi.String(clientURL + "/purchase-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripeapi.String(clientURL + "/purchase-cancel"),
	}
	if req.StripeCouponID != "" {
		params.Discounts = []*stripeapi.CheckoutSessionDiscountParams{
			{Coupon: stripeapi.String(req.StripeCouponID)},
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// RetrieveSession fetches the session's payment status for the verification
// endpoint.
func RetrieveSession(sessionID string) (*SessionDetails, error) {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return detailsFromSession(sess), nil
}

// CreateCoupon mirrors a local coupon as a single-use Stripe discount and
// returns its handle.
func CreateCoupon(percentOff int) (string, error) {
	c, err := coupon.New(&stripeapi.CouponParams{
		Duration:   stripeapi.String(string(stripeapi.CouponDurationOnce)),
		PercentOff: stripeapi.Float64(float64(percentOff)),
	})
	if err != nil {
		return "", fmt.Errorf("create stripe coupon: %w", err)
	}
	return c.ID, nil
}

// Event is a verified webhook event. Session is populated only for
// checkout.session.completed.
type Event struct {
	ID      string
	Type    string
	Session *SessionDetails
}

const EventCheckoutCompleted = "checkout.session.completed"

// ConstructEvent verifies the payload signature and decodes the session for
// completed-checkout events. A signature failure means the event must be
// rejected with a client error, never processed.
func ConstructEvent(payload []byte, sigHeader string) (Event, error) {
	raw, err := webhook.ConstructEvent(payload, sigHeader, webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("webhook signature verification: %w", err)
	}

	ev := Event{ID: raw.ID, Type: string(raw.Type)}
	if ev.Type == EventCheckoutCompleted {
		var sess stripeapi.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &sess); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		ev.Session = detailsFromSession(&sess)
	}
	return ev, nil
}

func detailsFromSession(sess *stripeapi.CheckoutSession) *SessionDetails {
	d := &SessionDetails{
		ID:          sess.ID,
		Paid:        sess.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid,
		AmountTotal: sess.AmountTotal,
		Metadata:    sess.Metadata,
	}
	if sess.ShippingCost != nil {
		d.ShippingCost = sess.ShippingCost.AmountTotal
	}
	if sd := sess.ShippingDetails; sd != nil {
		d.Address.Name = sd.Name
		if sd.Address != nil {
			d.Address.Line1 = sd.Address.Line1
			d.Address.Line2 = sd.Address.Line2
			d.Address.City = sd.Address.City
			d.Address.State = sd.Address.State
			d.Address.PostalCode = sd.Address.PostalCode
			d.Address.Country = sd.Address.Country
		}
	}
	return d
}
