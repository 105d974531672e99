package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeClaimsBooleanFlags(t *testing.T) {
	id, err := NormalizeClaims(map[string]any{
		"uid":     "u1",
		"email":   "chef@example.com",
		"kitchen": true,
		"admin":   false,
	})
	require.NoError(t, err)
	require.Equal(t, "u1", id.UID)
	require.True(t, id.Roles.Kitchen)
	require.False(t, id.Roles.Admin)
	require.Equal(t, []string{"kitchen"}, id.RolesFor("any-tenant"))
}

func TestNormalizeClaimsRoleString(t *testing.T) {
	id, err := NormalizeClaims(map[string]any{
		"sub":  "u2",
		"role": "waiter",
	})
	require.NoError(t, err)
	require.True(t, id.Roles.Waiter)
	require.Equal(t, []string{"waiter"}, id.RolesFor("acme"))
}

func TestNormalizeClaimsTenantScoped(t *testing.T) {
	id, err := NormalizeClaims(map[string]any{
		"user_id": "u3",
		"admin":   true,
		"tenants": map[string]any{
			"acme": map[string]any{"roles": []any{"cashier", "waiter"}},
		},
	})
	require.NoError(t, err)

	// Tenant-scoped roles win over global flags for that tenant.
	require.Equal(t, []string{"cashier", "waiter"}, id.RolesFor("acme"))
	require.Equal(t, []string{"admin"}, id.RolesFor("other"))
}

func TestNormalizeClaimsUIDFallbackOrder(t *testing.T) {
	id, err := NormalizeClaims(map[string]any{"user_id": "via-user-id", "sub": "via-sub"})
	require.NoError(t, err)
	require.Equal(t, "via-user-id", id.UID)
}

func TestNormalizeClaimsRejectsMissingUID(t *testing.T) {
	_, err := NormalizeClaims(map[string]any{"email": "x@example.com"})
	require.Error(t, err)

	_, err = NormalizeClaims(nil)
	require.Error(t, err)
}

func TestNormalizeClaimsIgnoresMalformedTenantShapes(t *testing.T) {
	id, err := NormalizeClaims(map[string]any{
		"uid": "u4",
		"tenants": map[string]any{
			"acme":   "not-a-map",
			"bistro": map[string]any{"roles": "not-a-list"},
		},
	})
	require.NoError(t, err)
	require.Nil(t, id.TenantRoles)
}
