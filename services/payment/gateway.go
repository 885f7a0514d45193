package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"

	"tourspot/models"
)

// Gateway is the payment provider contract consumed by the reservation
// core. It is invoked as a side effect of status transitions, never inside
// the capacity-check transaction, so that transaction stays short-lived.
type Gateway interface {
	CreateIntent(ctx context.Context, amount models.Money) (string, error)
	Refund(ctx context.Context, intentID string) (string, error)
}

// StripeGateway implements Gateway against Stripe. stripe.Key is set once
// at startup from config.
type StripeGateway struct {
	Currency string
	Logger   *zap.Logger
}

// NewStripeGateway constructs a StripeGateway for the given currency.
func NewStripeGateway(currency string, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Currency: currency, Logger: logger}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount models.Money) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount.Subunits()),
		Currency:    stripe.String(g.Currency),
		Description: stripe.String("TourSpot booking"),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.Logger.Info("payment intent created",
		zap.String("intentID", intent.ID),
		zap.Int64("amount", amount.Subunits()),
	)
	return intent.ID, nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to refund intent %s: %w", intentID, err)
	}

	g.Logger.Info("refund issued",
		zap.String("intentID", intentID),
		zap.String("refundID", r.ID),
	)
	return r.ID, nil
}
