package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk-saas/platform/go/auth/devtoken"
)

func devTokenCommand() *cobra.Command {
	var params devtoken.Params
	var roles []string
	var tenantRoles []string
	var expiresIn time.Duration

	cmd := &cobra.Command{
		Use:   "devtoken",
		Short: "Generate an unsigned Firebase-compatible JWT for dev/local use",
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Roles = roles
			params.ExpiresIn = expiresIn

			parsed, err := parseTenantRoles(tenantRoles)
			if err != nil {
				return err
			}
			params.TenantRoles = parsed

			token, err := devtoken.BuildUnsignedToken(params, time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	// Required claims
	cmd.Flags().StringVar(&params.ProjectID, "project-id", "", "Firebase project ID (iss/aud)")
	cmd.Flags().StringVar(&params.UserID, "user-id", "", "user_id/sub/uid claim")
	cmd.Flags().StringVar(&params.Email, "email", "", "email claim")

	// Optional claims
	cmd.Flags().StringVar(&params.Name, "name", "", "display name")
	cmd.Flags().BoolVar(&params.EmailVerified, "email-verified", true, "email_verified claim")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "global role flags to set true (admin,kitchen,waiter,delivery,cashier)")
	cmd.Flags().StringSliceVar(&tenantRoles, "tenant-roles", nil, "tenant-scoped roles as tenantId=role1|role2 (repeatable)")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", time.Hour, "token lifetime (e.g. 30m, 2h)")
	cmd.Flags().StringVar(&params.Audience, "audience", "", "override aud; defaults to project-id")
	cmd.Flags().StringVar(&params.Issuer, "issuer", "", "override iss; defaults to securetoken URL")

	_ = cmd.MarkFlagRequired("project-id")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// parseTenantRoles converts "acme=admin|kitchen" entries into the claims map
// shape consumed by the token builder.
func parseTenantRoles(entries []string) (map[string][]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(entries))
	for _, entry := range entries {
		tenantID, rolesRaw, ok := strings.Cut(entry, "=")
		if !ok || tenantID == "" || rolesRaw == "" {
			return nil, fmt.Errorf("invalid tenant-roles entry %q (want tenantId=role1|role2)", entry)
		}
		out[tenantID] = strings.Split(rolesRaw, "|")
	}
	return out, nil
}
