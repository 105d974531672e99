// Package provider abstracts the payment gateways behind one contract:
// accept an amount and currency, return an opaque reference the frontend can
// drive checkout with. Gateway-specific error text never reaches end users.
package provider

import "context"

// PaymentIntent is the gateway's handle for a pending charge.
type PaymentIntent struct {
	// Reference is the provider-side id (Stripe payment intent id, PayPal
	// order id).
	Reference string
	// ClientSecret is what the frontend needs to complete the charge; empty
	// for providers that only use the reference.
	ClientSecret string
	ApproveURL   string
}

// Provider creates payment intents against one gateway.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, amountCents int64, currency string, description string) (PaymentIntent, error)
}
