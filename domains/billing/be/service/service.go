package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/orderdesk-saas/domains/billing/be/provider"
	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

// ErrNoOpenOrder signals that a tenant has no pending upgrade order.
var ErrNoOpenOrder = errors.New("no open upgrade order")

// UpgradeStatus is the lifecycle of a subscription upgrade order.
type UpgradeStatus string

const (
	UpgradePending   UpgradeStatus = "pending"
	UpgradePaid      UpgradeStatus = "paid"
	UpgradeCancelled UpgradeStatus = "cancelled"
)

// UpgradeOrder tracks one subscription purchase attempt for a tenant.
type UpgradeOrder struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenantId"`
	PlanID      string        `json:"planId"`
	AmountCents int64         `json:"amountCents"`
	Currency    string        `json:"currency"`
	Status      UpgradeStatus `json:"status"`
	Provider    string        `json:"provider,omitempty"`
	ProviderRef string        `json:"providerRef,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Repository abstracts upgrade-order persistence.
type Repository interface {
	PutUpgradeOrder(ctx context.Context, o UpgradeOrder) error
	// FindOpenOrder returns the newest pending order for the tenant, or
	// ErrNoOpenOrder.
	FindOpenOrder(ctx context.Context, tenantID string) (UpgradeOrder, error)
}

// Service owns subscription upgrade checkout and order resolution.
type Service struct {
	repo      Repository
	providers map[string]provider.Provider
	now       func() time.Time
	newID     func() string
}

// New constructs a Service. providers is keyed by provider name.
func New(repo Repository, providers map[string]provider.Provider) *Service {
	if repo == nil {
		panic("billing repo is required")
	}
	return &Service{
		repo:      repo,
		providers: providers,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// ResolveOrder returns the id of the tenant's open upgrade order so the
// frontend can resume an interrupted checkout.
func (s *Service) ResolveOrder(ctx context.Context, tenantID string) (string, error) {
	o, err := s.repo.FindOpenOrder(ctx, tenantID)
	if errors.Is(err, ErrNoOpenOrder) {
		return "", apperror.New(apperror.KindNotFound, "NO_OPEN_ORDER", "no open upgrade order for tenant")
	}
	if err != nil {
		return "", err
	}
	return o.ID, nil
}

// CheckoutResult pairs the persisted order with the gateway handle the
// frontend drives payment with.
type CheckoutResult struct {
	Order  UpgradeOrder
	Intent provider.PaymentIntent
}

// Checkout creates a pending upgrade order and a payment intent against the
// requested gateway. An existing pending order is reused so abandoning
// checkout does not pile up orders.
func (s *Service) Checkout(ctx context.Context, tenantID, planID, providerName string, amountCents int64, currency string) (CheckoutResult, error) {
	if amountCents <= 0 {
		return CheckoutResult{}, apperror.Validationf("AMOUNT_INVALID", "amount must be positive")
	}
	gateway, ok := s.providers[providerName]
	if !ok {
		return CheckoutResult{}, apperror.Validationf("PROVIDER_UNKNOWN", "unknown payment provider %q", providerName)
	}

	now := s.now().UTC()
	order, err := s.repo.FindOpenOrder(ctx, tenantID)
	switch {
	case errors.Is(err, ErrNoOpenOrder):
		order = UpgradeOrder{
			ID:          s.newID(),
			TenantID:    tenantID,
			PlanID:      planID,
			AmountCents: amountCents,
			Currency:    currency,
			Status:      UpgradePending,
			CreatedAt:   now,
		}
	case err != nil:
		return CheckoutResult{}, err
	}

	intent, err := gateway.CreateIntent(ctx, order.AmountCents, order.Currency,
		fmt.Sprintf("Orderdesk subscription %s for %s", order.PlanID, tenantID))
	if err != nil {
		return CheckoutResult{}, err
	}

	order.Provider = gateway.Name()
	order.ProviderRef = intent.Reference
	order.UpdatedAt = now
	if err := s.repo.PutUpgradeOrder(ctx, order); err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{Order: order, Intent: intent}, nil
}
