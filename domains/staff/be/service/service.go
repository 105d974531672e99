package service

import (
	"context"
	"errors"
	"time"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
)

// ErrMemberNotFound signals the absence of a member record; callers treat it
// as the implicit customer role.
var ErrMemberNotFound = errors.New("member not found")

// Member is one user's operational role within a tenant, keyed by
// (tenantId, uid).
type Member struct {
	UID       string    `json:"uid"`
	Role      Role      `json:"role"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository abstracts member persistence. Reads must reflect the latest
// committed write (strong consistency), which both docstore backends provide.
type Repository interface {
	GetMember(ctx context.Context, tenantID, uid string) (Member, error)
	PutMember(ctx context.Context, tenantID string, m Member) error
	DeleteMember(ctx context.Context, tenantID, uid string) error
	ListMembers(ctx context.Context, tenantID string) ([]Member, error)
}

// Service resolves and enforces operational roles within a tenant.
type Service struct {
	repo   Repository
	claims platformauth.ClaimsAdmin
	now    func() time.Time
}

// New constructs a Service. claims may be nil when no identity provider is
// wired (role changes then only update member records).
func New(repo Repository, claims platformauth.ClaimsAdmin) *Service {
	if repo == nil {
		panic("staff repo is required")
	}
	return &Service{repo: repo, claims: claims, now: time.Now}
}

// GetRole resolves the user's role within the tenant; absence of a member
// record means customer.
func (s *Service) GetRole(ctx context.Context, tenantID, uid string) (Role, error) {
	m, err := s.repo.GetMember(ctx, tenantID, uid)
	if errors.Is(err, ErrMemberNotFound) {
		return RoleCustomer, nil
	}
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// RequireAdmin fails with a forbidden error unless the identity holds the
// admin role for the tenant.
func (s *Service) RequireAdmin(ctx context.Context, tenantID string, identity *platformauth.Identity) error {
	return s.RequireAnyRole(ctx, tenantID, identity, RoleAdmin)
}

// RequireAnyRole enforces that the identity holds at least one of the given
// roles for the tenant. Claims carried on the identity are checked first as a
// fast path; the member record is the tenant-specific source of truth when
// claims carry nothing for this tenant. Missing identity is unauthorized
// (401); an established identity without a matching role is forbidden (403).
func (s *Service) RequireAnyRole(ctx context.Context, tenantID string, identity *platformauth.Identity, roles ...Role) error {
	if identity == nil || identity.UID == "" {
		return apperror.New(apperror.KindUnauthorized, "AUTH_REQUIRED", "authentication required")
	}

	required := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		required[r] = struct{}{}
	}

	for _, claimed := range identity.RolesFor(tenantID) {
		if role, err := ParseRole(claimed); err == nil {
			if _, ok := required[role]; ok {
				return nil
			}
		}
	}

	role, err := s.GetRole(ctx, tenantID, identity.UID)
	if err != nil {
		return err
	}
	if _, ok := required[role]; ok {
		return nil
	}

	return apperror.New(apperror.KindForbidden, "ROLE_REQUIRED", "insufficient role for this operation")
}

// SetRoles updates the member record from the given role flags and mirrors
// them into the identity provider's custom claims so the fast path stays
// consistent. Clearing every flag demotes the user back to customer by
// removing the member record. Returns the claims written.
func (s *Service) SetRoles(ctx context.Context, tenantID, uid string, flags platformauth.RoleFlags) (map[string]any, error) {
	role := RoleFromFlags(flags)

	if role == RoleCustomer {
		if err := s.repo.DeleteMember(ctx, tenantID, uid); err != nil {
			return nil, err
		}
	} else {
		m := Member{UID: uid, Role: role, UpdatedAt: s.now().UTC()}
		if err := s.repo.PutMember(ctx, tenantID, m); err != nil {
			return nil, err
		}
	}

	claims := claimsForFlags(tenantID, flags)
	if s.claims != nil {
		if err := s.claims.SetUserClaims(ctx, uid, claims); err != nil {
			return nil, apperror.Wrap(apperror.KindUpstream, "CLAIMS_WRITE_FAILED",
				"role saved but identity claims could not be updated", err)
		}
	}
	return claims, nil
}

// ListMembers returns every staff member of the tenant.
func (s *Service) ListMembers(ctx context.Context, tenantID string) ([]Member, error) {
	return s.repo.ListMembers(ctx, tenantID)
}

func claimsForFlags(tenantID string, flags platformauth.RoleFlags) map[string]any {
	var roles []string
	if flags.Admin {
		roles = append(roles, string(RoleAdmin))
	}
	if flags.Kitchen {
		roles = append(roles, string(RoleKitchen))
	}
	if flags.Waiter {
		roles = append(roles, string(RoleWaiter))
	}
	if flags.Delivery {
		roles = append(roles, string(RoleDelivery))
	}
	if flags.Cashier {
		roles = append(roles, string(RoleCashier))
	}

	claims := map[string]any{
		"admin":    flags.Admin,
		"kitchen":  flags.Kitchen,
		"waiter":   flags.Waiter,
		"delivery": flags.Delivery,
		"cashier":  flags.Cashier,
	}
	if len(roles) > 0 {
		claims["tenants"] = map[string]any{
			tenantID: map[string]any{"roles": roles},
		}
	}
	return claims
}
