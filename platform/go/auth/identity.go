package auth

import (
	"errors"
)

// RoleFlags are the operational role booleans carried in identity claims.
// The zero value means "customer" everywhere.
type RoleFlags struct {
	Admin    bool
	Kitchen  bool
	Waiter   bool
	Delivery bool
	Cashier  bool
}

// Any reports whether at least one flag is set.
func (f RoleFlags) Any() bool {
	return f.Admin || f.Kitchen || f.Waiter || f.Delivery || f.Cashier
}

// Identity is the canonical, strongly-typed record produced once at the
// authentication boundary. Downstream code never probes raw claim maps; every
// supported claim shape is folded into this struct by NormalizeClaims.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          *string
	// Roles are the global role flags from custom claims.
	Roles RoleFlags
	// TenantRoles maps tenantId -> role names for tenant-scoped claim shapes
	// (claims.tenants[tenantId].roles).
	TenantRoles map[string][]string
}

// RolesFor returns the role names the identity carries for the given tenant:
// the tenant-scoped entry when present, otherwise the global flags.
func (id *Identity) RolesFor(tenantID string) []string {
	if roles, ok := id.TenantRoles[tenantID]; ok && len(roles) > 0 {
		return roles
	}
	var roles []string
	if id.Roles.Admin {
		roles = append(roles, "admin")
	}
	if id.Roles.Kitchen {
		roles = append(roles, "kitchen")
	}
	if id.Roles.Waiter {
		roles = append(roles, "waiter")
	}
	if id.Roles.Delivery {
		roles = append(roles, "delivery")
	}
	if id.Roles.Cashier {
		roles = append(roles, "cashier")
	}
	return roles
}

// NormalizeClaims folds every supported claim shape into an Identity:
// boolean role flags (admin/kitchen/waiter/delivery/cashier), a single "role"
// string, and the nested per-tenant roles map. This is the only place claim
// shapes are interpreted.
func NormalizeClaims(claims map[string]any) (*Identity, error) {
	if claims == nil {
		return nil, errors.New("missing claims")
	}

	uid := fallbackStringClaim(claims, []string{"uid", "user_id", "sub"})
	if uid == "" {
		return nil, errors.New("claims carry no user id")
	}

	id := &Identity{
		UID:           uid,
		Email:         stringClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
		Name:          optionalStringClaim(claims, "name"),
		Roles: RoleFlags{
			Admin:    boolClaim(claims, "admin"),
			Kitchen:  boolClaim(claims, "kitchen"),
			Waiter:   boolClaim(claims, "waiter"),
			Delivery: boolClaim(claims, "delivery"),
			Cashier:  boolClaim(claims, "cashier"),
		},
	}

	// Single role string is an alternative to the boolean flags.
	switch stringClaim(claims, "role") {
	case "admin":
		id.Roles.Admin = true
	case "kitchen":
		id.Roles.Kitchen = true
	case "waiter":
		id.Roles.Waiter = true
	case "delivery":
		id.Roles.Delivery = true
	case "cashier":
		id.Roles.Cashier = true
	}

	id.TenantRoles = tenantRolesClaim(claims)

	return id, nil
}

func tenantRolesClaim(claims map[string]any) map[string][]string {
	tenants, ok := claims["tenants"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(tenants))
	for tenantID, v := range tenants {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		rawRoles, ok := entry["roles"].([]any)
		if !ok {
			continue
		}
		roles := make([]string, 0, len(rawRoles))
		for _, r := range rawRoles {
			if name, ok := r.(string); ok && name != "" {
				roles = append(roles, name)
			}
		}
		if len(roles) > 0 {
			out[tenantID] = roles
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func boolClaim(claims map[string]any, key string) bool {
	if v, ok := claims[key]; ok {
		if boolVal, valid := v.(bool); valid {
			return boolVal
		}
	}
	return false
}

func stringClaim(claims map[string]any, key string) string {
	if v, ok := claims[key]; ok {
		if strVal, valid := v.(string); valid {
			return strVal
		}
	}
	return ""
}

func optionalStringClaim(claims map[string]any, key string) *string {
	if v, ok := claims[key]; ok {
		if strVal, valid := v.(string); valid && strVal != "" {
			return &strVal
		}
	}
	return nil
}

func fallbackStringClaim(claims map[string]any, keys []string) string {
	for _, key := range keys {
		if v := stringClaim(claims, key); v != "" {
			return v
		}
	}
	return ""
}
