package service

import (
	"fmt"

	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
)

// Role is the closed set of operational roles a user can hold within a
// tenant. Customer is the implicit default for users without a member record.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleKitchen  Role = "kitchen"
	RoleWaiter   Role = "waiter"
	RoleDelivery Role = "delivery"
	RoleCashier  Role = "cashier"
	RoleCustomer Role = "customer"
)

// StaffRoles lists every role stored in member records, in precedence order.
var StaffRoles = []Role{RoleAdmin, RoleKitchen, RoleWaiter, RoleDelivery, RoleCashier}

// ParseRole converts a stored string into a Role; unknown values fail.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleKitchen, RoleWaiter, RoleDelivery, RoleCashier, RoleCustomer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// RoleFromFlags collapses role flags into the single highest-precedence role:
// admin > kitchen > waiter > delivery > cashier > customer.
func RoleFromFlags(f platformauth.RoleFlags) Role {
	switch {
	case f.Admin:
		return RoleAdmin
	case f.Kitchen:
		return RoleKitchen
	case f.Waiter:
		return RoleWaiter
	case f.Delivery:
		return RoleDelivery
	case f.Cashier:
		return RoleCashier
	default:
		return RoleCustomer
	}
}

// LandingRoute maps a role to its canonical post-login route. Earlier
// deployments disagreed on the waiter and delivery paths; /admin/waiter and
// /admin/delivery are canonical now.
func LandingRoute(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleKitchen:
		return "/admin/kitchen"
	case RoleWaiter:
		return "/admin/waiter"
	case RoleDelivery:
		return "/admin/delivery"
	case RoleCashier:
		return "/admin/cashier"
	case RoleCustomer:
		return "/app"
	}
	return "/app"
}
