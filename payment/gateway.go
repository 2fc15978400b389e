// Package payment wraps the Stripe payment-intent API behind a small
// gateway type. Without a configured secret key every operation degrades to
// a simulated response so the rest of the system runs without credentials.
package payment

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/models"
)

// Intent is the gateway-neutral view of a payment intent.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret,omitempty"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	Simulated    bool   `json:"simulated"`
}

// Refund is the gateway-neutral view of a refund.
type Refund struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Simulated bool   `json:"simulated"`
}

// Gateway is an explicitly constructed payment client; no package-level
// state. A nil api means simulated mode.
type Gateway struct {
	api *client.API
}

// NewGateway builds a live gateway when a secret key is supplied, a
// simulated one otherwise.
func NewGateway(secretKey string) *Gateway {
	if secretKey == "" {
		logger.Get().Warn("stripe secret key not configured, payment processing will be simulated")
		return &Gateway{}
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	logger.Get().Info("stripe payment gateway initialized")
	return &Gateway{api: api}
}

// Simulated reports whether the gateway runs without live credentials.
func (g *Gateway) Simulated() bool {
	return g.api == nil
}

// CreateIntent opens a payment intent for the order's total, in minor
// currency units, tagged with the order identifiers.
func (g *Gateway) CreateIntent(order *models.Order) (*Intent, error) {
	amount := toMinorUnits(order.TotalAmount)
	if g.Simulated() {
		return &Intent{
			ID:        "pi_simulated_" + uuid.NewString(),
			Amount:    amount,
			Currency:  "usd",
			Status:    "requires_payment_method",
			Simulated: true,
		}, nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(fmt.Sprintf("Order #%s", order.OrderNumber)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", strconv.FormatUint(uint64(order.ID), 10))
	params.AddMetadata("order_number", order.OrderNumber)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}

	logger.Get().Info("payment intent created",
		zap.String("order_number", order.OrderNumber), zap.String("intent_id", pi.ID))
	return fromStripeIntent(pi), nil
}

// ConfirmIntent confirms a payment intent by id.
func (g *Gateway) ConfirmIntent(intentID string) (*Intent, error) {
	if g.Simulated() {
		return &Intent{ID: intentID, Currency: "usd", Status: "succeeded", Simulated: true}, nil
	}

	pi, err := g.api.PaymentIntents.Confirm(intentID, &stripe.PaymentIntentConfirmParams{})
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(pi), nil
}

// RefundIntent refunds amount against a payment intent.
func (g *Gateway) RefundIntent(intentID string, amount float64) (*Refund, error) {
	minor := toMinorUnits(amount)
	if g.Simulated() {
		logger.Get().Info("simulated refund",
			zap.String("intent_id", intentID), zap.Float64("amount", amount))
		return &Refund{
			ID:        "re_simulated_" + uuid.NewString(),
			Amount:    minor,
			Status:    "succeeded",
			Simulated: true,
		}, nil
	}

	refund, err := g.api.Refunds.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(minor),
	})
	if err != nil {
		return nil, err
	}
	return &Refund{ID: refund.ID, Amount: refund.Amount, Status: string(refund.Status)}, nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
