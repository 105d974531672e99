package service

import (
	"context"
	"errors"
	"time"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
	"github.com/orderdesk/orderdesk-saas/platform/go/tenant"
)

// Errors returned by the service layer.
var (
	ErrNotFound = errors.New("tenant not found")
	ErrConflict = errors.New("tenant id already exists")
	ErrDisabled = errors.New("tenant disabled")
)

// HoldDuration is how long a subdomain reservation blocks other claimants.
const HoldDuration = 15 * time.Minute

// Status is the lifecycle state of a committed tenant.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Tenant is a committed restaurant record. The ID is the canonical DNS-safe
// slug and the partition key for every tenant-scoped collection; it is
// immutable once the record exists and is never reused, even after deletion.
type Tenant struct {
	ID          string    `json:"id"`
	DisplayName *string   `json:"displayName,omitempty"`
	Status      Status    `json:"status"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

// Reservation is a temporary claim on a desired subdomain during signup.
// Expired reservations are simply ignored and overwritten; no cleanup runs.
type Reservation struct {
	Name      string    `json:"name"`
	HeldBy    string    `json:"heldBy"`
	HoldUntil time.Time `json:"holdUntil"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Availability is the outcome of a subdomain check. Reason is user-facing.
type Availability struct {
	Available bool
	Reason    string
}

// CreateInput represents the request to commit a tenant.
type CreateInput struct {
	ID          string
	DisplayName *string
	Currency    string
	CreatedBy   string
}

// Repository abstracts persistence for tenants and reservations.
type Repository interface {
	GetTenant(ctx context.Context, id string) (Tenant, error)
	CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
	GetReservation(ctx context.Context, name string) (Reservation, error)
	PutReservation(ctx context.Context, r Reservation) error
}

// Service provides the tenant registry and the subdomain reservation arbiter.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New constructs a Service with required dependencies.
func New(repo Repository) *Service {
	if repo == nil {
		panic("tenants repo is required")
	}
	return &Service{repo: repo, now: time.Now}
}

// NewWithClock allows tests to control time.
func NewWithClock(repo Repository, now func() time.Time) *Service {
	s := New(repo)
	s.now = now
	return s
}

// CheckAndHold normalizes and validates the desired subdomain and, when
// available, places or renews a 15-minute hold for holderID. Every failure
// mode degrades to {available:false, reason}; this endpoint never surfaces an
// error to the caller. The hold is a soft lock: tenant creation re-checks
// uniqueness against committed records before finalizing.
func (s *Service) CheckAndHold(ctx context.Context, desired, holderID string) Availability {
	id := tenant.Normalize(desired)
	if err := tenant.AssertValid(id); err != nil {
		return Availability{Available: false, Reason: reasonFromErr(err)}
	}

	// Committed tenants are permanently taken, regardless of reservations.
	if _, err := s.repo.GetTenant(ctx, id); err == nil {
		return Availability{Available: false, Reason: "already taken"}
	} else if !errors.Is(err, ErrNotFound) {
		return Availability{Available: false, Reason: "temporarily unavailable"}
	}

	now := s.now().UTC()
	createdAt := now

	existing, err := s.repo.GetReservation(ctx, id)
	switch {
	case err == nil:
		if now.Before(existing.HoldUntil) && existing.HeldBy != holderID {
			return Availability{Available: false, Reason: "temporarily held by another signup"}
		}
		createdAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		// fresh claim
	default:
		return Availability{Available: false, Reason: "temporarily unavailable"}
	}

	reservation := Reservation{
		Name:      id,
		HeldBy:    holderID,
		HoldUntil: now.Add(HoldDuration),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if err := s.repo.PutReservation(ctx, reservation); err != nil {
		return Availability{Available: false, Reason: "temporarily unavailable"}
	}

	return Availability{Available: true}
}

// Create commits a tenant record. The reservation is advisory only, so
// uniqueness against committed tenants is re-checked here; the repository's
// create must itself fail on conflict to close the remaining race.
func (s *Service) Create(ctx context.Context, input CreateInput) (Tenant, error) {
	id := tenant.Normalize(input.ID)
	if err := tenant.AssertValid(id); err != nil {
		return Tenant{}, err
	}

	if _, err := s.repo.GetTenant(ctx, id); err == nil {
		return Tenant{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return Tenant{}, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	t := Tenant{
		ID:          id,
		DisplayName: input.DisplayName,
		Status:      StatusActive,
		Currency:    currency,
		CreatedAt:   s.now().UTC(),
		CreatedBy:   input.CreatedBy,
	}
	return s.repo.CreateTenant(ctx, t)
}

// Get returns a committed tenant by id.
func (s *Service) Get(ctx context.Context, id string) (Tenant, error) {
	return s.repo.GetTenant(ctx, id)
}

// ResolveTenantSpace returns a lightweight tenant Space for middleware
// consumption.
func (s *Service) ResolveTenantSpace(tenantID string) (tenant.Space, error) {
	t, err := s.repo.GetTenant(context.Background(), tenantID)
	if err != nil {
		return tenant.Space{}, err
	}
	space := tenant.Space{
		ID:       t.ID,
		Currency: t.Currency,
		Disabled: t.Status == StatusDisabled,
	}
	if t.DisplayName != nil {
		space.DisplayName = *t.DisplayName
	}
	return space, nil
}

// reasonFromErr keeps only the human message from validation errors; codes
// stay out of the public availability response.
func reasonFromErr(err error) string {
	if appErr, ok := apperror.AsError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
