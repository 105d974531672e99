package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

// StripeProvider creates payment intents via the Stripe REST API.
type StripeProvider struct {
	client *resty.Client
	logger *zap.Logger
}

// NewStripeProvider constructs a StripeProvider with the given secret key.
// baseURL is overridable for tests; empty selects the live endpoint.
func NewStripeProvider(secretKey, baseURL string, logger *zap.Logger) *StripeProvider {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(4 * time.Second).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json")
	return &StripeProvider{client: client, logger: logger}
}

func (p *StripeProvider) Name() string { return "stripe" }

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, currency, description string) (PaymentIntent, error) {
	var result stripeIntentResponse
	var apiErr stripeErrorResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"amount":      fmt.Sprintf("%d", amountCents),
			"currency":    currency,
			"description": description,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1/payment_intents")
	if err != nil {
		return PaymentIntent{}, apperror.Wrap(apperror.KindUpstream, "PAYMENT_PROVIDER_UNAVAILABLE",
			"payment provider did not respond", err)
	}
	if resp.IsError() {
		p.logger.Warn("stripe rejected payment intent",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error_type", apiErr.Error.Type),
			zap.String("error_message", apiErr.Error.Message),
		)
		return PaymentIntent{}, apperror.New(apperror.KindUpstream, "PAYMENT_PROVIDER_REJECTED",
			"payment provider rejected the request")
	}
	return PaymentIntent{Reference: result.ID, ClientSecret: result.ClientSecret}, nil
}

var _ Provider = (*StripeProvider)(nil)
