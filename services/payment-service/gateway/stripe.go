package gateway

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// StripeGateway charges through Stripe payment intents. Amounts are
// converted to minor units before hitting the API.
type StripeGateway struct {
	Currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{Currency: currency}
}

func (g *StripeGateway) Charge(ctx context.Context, amount decimal.Decimal, _ string) (Result, error) {
	minor := amount.Mul(decimal.NewFromInt(100)).IntPart()
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(strings.ToLower(g.Currency)),
		Confirm:  stripe.Bool(true),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			return Result{Accepted: false, Reason: stripeErr.Msg}, nil
		}
		return Result{}, err
	}
	return Result{Accepted: true, Ref: pi.ID}, nil
}
