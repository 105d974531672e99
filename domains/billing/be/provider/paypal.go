package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

// PayPalProvider creates orders via the PayPal REST API. Access tokens are
// fetched via client-credentials and cached until shortly before expiry.
type PayPalProvider struct {
	client       *resty.Client
	clientID     string
	clientSecret string
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalProvider constructs a PayPalProvider. baseURL is overridable for
// tests and sandbox; empty selects the live endpoint.
func NewPayPalProvider(clientID, clientSecret, baseURL string, logger *zap.Logger) *PayPalProvider {
	if baseURL == "" {
		baseURL = "https://api-m.paypal.com"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(4 * time.Second).
		SetHeader("Accept", "application/json")
	return &PayPalProvider{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
	}
}

func (p *PayPalProvider) Name() string { return "paypal" }

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *PayPalProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	var result paypalTokenResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.clientID, p.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&result).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", apperror.Wrap(apperror.KindUpstream, "PAYMENT_PROVIDER_UNAVAILABLE",
			"payment provider did not respond", err)
	}
	if resp.IsError() || result.AccessToken == "" {
		p.logger.Warn("paypal token request failed", zap.Int("status_code", resp.StatusCode()))
		return "", apperror.New(apperror.KindUpstream, "PAYMENT_PROVIDER_AUTH_FAILED",
			"payment provider authentication failed")
	}

	p.accessToken = result.AccessToken
	// renew a minute early so in-flight requests never carry a stale token
	p.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - time.Minute)
	return p.accessToken, nil
}

type paypalOrderResponse struct {
	ID    string `json:"id"`
	Links []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

func (p *PayPalProvider) CreateIntent(ctx context.Context, amountCents int64, currency, description string) (PaymentIntent, error) {
	accessToken, err := p.token(ctx)
	if err != nil {
		return PaymentIntent{}, err
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"description": description,
			"amount": map[string]any{
				"currency_code": strings.ToUpper(currency),
				"value":         fmt.Sprintf("%d.%02d", amountCents/100, amountCents%100),
			},
		}},
	}

	var result paypalOrderResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post("/v2/checkout/orders")
	if err != nil {
		return PaymentIntent{}, apperror.Wrap(apperror.KindUpstream, "PAYMENT_PROVIDER_UNAVAILABLE",
			"payment provider did not respond", err)
	}
	if resp.IsError() || result.ID == "" {
		p.logger.Warn("paypal rejected order", zap.Int("status_code", resp.StatusCode()))
		return PaymentIntent{}, apperror.New(apperror.KindUpstream, "PAYMENT_PROVIDER_REJECTED",
			"payment provider rejected the request")
	}

	intent := PaymentIntent{Reference: result.ID}
	for _, link := range result.Links {
		if link.Rel == "approve" {
			intent.ApproveURL = link.Href
		}
	}
	return intent, nil
}

var _ Provider = (*PayPalProvider)(nil)
