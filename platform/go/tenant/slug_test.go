package tenant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My_Tenant", "my-tenant"},
		{"  Acme Pizza  ", "acme-pizza"},
		{"café.bistro", "caf-bistro"},
		{"--already--slugged--", "already-slugged"},
		{"UPPER", "upper"},
		{"a", "a"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeCollapsesRepeatedHyphens(t *testing.T) {
	require.Equal(t, "caf-bistro", Normalize("caf--bistro"))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"My_Tenant", "  spaces  ", "a--b--c", "já-pronto", "WWW", strings.Repeat("x", 100)}
	for _, in := range inputs {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeTruncatesToMaxLength(t *testing.T) {
	got := Normalize(strings.Repeat("a", 80))
	require.Len(t, got, MaxLength)
	require.NoError(t, AssertValid(got))
}

func TestAssertValid(t *testing.T) {
	require.NoError(t, AssertValid("my-tenant"))
	require.NoError(t, AssertValid("abc"))
	require.NoError(t, AssertValid("a1b2"))

	requireCode := func(id, code string) {
		err := AssertValid(id)
		require.Error(t, err, "id %q", id)
		appErr, ok := apperror.AsError(err)
		require.True(t, ok)
		require.Equal(t, code, appErr.Code)
		require.Equal(t, apperror.KindValidation, appErr.Kind)
	}

	requireCode("", "TENANT_ID_EMPTY")
	requireCode("ab", "TENANT_ID_TOO_SHORT")
	requireCode(strings.Repeat("a", 64), "TENANT_ID_TOO_LONG")
	requireCode("-abc", "TENANT_ID_INVALID")
	requireCode("abc-", "TENANT_ID_INVALID")
	requireCode("My_Tenant", "TENANT_ID_INVALID")
	requireCode("www", "TENANT_ID_RESERVED")
	requireCode("admin", "TENANT_ID_RESERVED")
}

func TestNormalizedValidInputSurvivesRoundTrip(t *testing.T) {
	for _, id := range []string{"my-tenant", "pizza42", "a-1-b"} {
		require.Equal(t, id, Normalize(id))
		require.NoError(t, AssertValid(Normalize(id)))
	}
}
