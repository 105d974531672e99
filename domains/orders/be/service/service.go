package service

import (
	"context"
	"errors"
	"time"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

// ErrOrderNotFound signals that no order exists with the given id.
var ErrOrderNotFound = errors.New("order not found")

// Order is the persisted order document. Totals are authoritative server-side
// values in minor currency units, copied from the quote at checkout.
type Order struct {
	ID            string     `json:"id"`
	Type          OrderType  `json:"type"`
	Status        Status     `json:"status"`
	Currency      string     `json:"currency"`
	SubtotalCents int64      `json:"subtotalCents"`
	DiscountCents int64      `json:"discountCents"`
	ServiceCents  int64      `json:"serviceCents"`
	TaxCents      int64      `json:"taxCents"`
	TipCents      int64      `json:"tipCents"`
	TotalCents    int64      `json:"totalCents"`
	CustomerUID   string     `json:"customerUid,omitempty"`
	Table         string     `json:"table,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
}

// Repository abstracts order persistence. UpdateOrder runs apply inside the
// store's transaction so the read of the current document and the write of
// the mutated one commit atomically; apply may run more than once on
// contention and must stay side-effect free.
type Repository interface {
	GetOrder(ctx context.Context, tenantID, orderID string) (Order, error)
	CreateOrder(ctx context.Context, tenantID string, o Order) error
	UpdateOrder(ctx context.Context, tenantID, orderID string, apply func(Order) (Order, error)) (Order, error)
	ListOrders(ctx context.Context, tenantID string, statuses []Status, limit int) ([]Order, error)
}

// Service owns the order lifecycle within a tenant.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New constructs a Service instance.
func New(repo Repository) *Service {
	if repo == nil {
		panic("orders repo is required")
	}
	return &Service{repo: repo, now: time.Now}
}

// NewWithClock constructs a Service with an injected clock for tests.
func NewWithClock(repo Repository, now func() time.Time) *Service {
	s := New(repo)
	s.now = now
	return s
}

// Get loads a single order.
func (s *Service) Get(ctx context.Context, tenantID, orderID string) (Order, error) {
	o, err := s.repo.GetOrder(ctx, tenantID, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return Order{}, apperror.New(apperror.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	}
	return o, err
}

// List returns the tenant's orders, optionally restricted to the given
// statuses, newest first.
func (s *Service) List(ctx context.Context, tenantID string, statuses []Status, limit int) ([]Order, error) {
	return s.repo.ListOrders(ctx, tenantID, statuses, limit)
}

// Place creates a new order in the placed state with the given checkout
// snapshot. The id must be assigned by the caller.
func (s *Service) Place(ctx context.Context, tenantID string, o Order) (Order, error) {
	if o.ID == "" {
		return Order{}, apperror.Validationf("ORDER_ID_REQUIRED", "order id is required")
	}
	if _, err := ParseOrderType(string(o.Type)); err != nil {
		return Order{}, apperror.Validationf("ORDER_TYPE_INVALID", "unknown order type %q", o.Type)
	}
	now := s.now().UTC()
	o.Status = StatusPlaced
	o.CreatedAt = now
	o.UpdatedAt = now
	o.ClosedAt = nil
	if err := s.repo.CreateOrder(ctx, tenantID, o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Transition moves the order to rawStatus if the edge is legal for the
// order's type. The current status is re-read and the legality check re-run
// inside the repository transaction, so two racing mutations cannot both
// commit incompatible transitions. Illegal edges fail with a conflict error.
func (s *Service) Transition(ctx context.Context, tenantID, orderID, rawStatus string) (Order, error) {
	next, err := NormalizeStatus(rawStatus)
	if err != nil {
		return Order{}, apperror.Wrap(apperror.KindValidation, "STATUS_UNKNOWN", err.Error(), err)
	}

	updated, err := s.repo.UpdateOrder(ctx, tenantID, orderID, func(o Order) (Order, error) {
		if !CanTransition(o.Status, next, o.Type) {
			cause := &InvalidTransitionError{From: o.Status, To: next, Type: o.Type}
			return Order{}, apperror.Wrap(apperror.KindConflict, "INVALID_TRANSITION", cause.Error(), cause)
		}
		now := s.now().UTC()
		o.Status = next
		o.UpdatedAt = now
		if IsTerminal(next) {
			o.ClosedAt = &now
		}
		return o, nil
	})
	if errors.Is(err, ErrOrderNotFound) {
		return Order{}, apperror.New(apperror.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	}
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}
