package member

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	clistore "github.com/orderdesk/orderdesk-saas/apps/cli/store"
	"github.com/orderdesk/orderdesk-saas/domains/staff/be/repo"
	"github.com/orderdesk/orderdesk-saas/domains/staff/be/service"
	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
	"github.com/orderdesk/orderdesk-saas/platform/go/gcp"
)

// Command groups staff member helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Staff member utilities (set-role/list)",
	}

	cmd.AddCommand(setRoleCommand())
	cmd.AddCommand(listCommand())
	return cmd
}

func setRoleCommand() *cobra.Command {
	var (
		databaseURL     string
		credentialsFile string
		tenantID        string
		uid             string
		role            string
		syncClaims      bool
	)

	c := &cobra.Command{
		Use:   "set-role",
		Short: "Set a user's operational role within a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			parsed, err := service.ParseRole(role)
			if err != nil {
				return err
			}

			s, cleanup, err := clistore.Open(ctx, databaseURL, credentialsFile)
			if err != nil {
				return err
			}
			defer cleanup()

			var claimsAdmin platformauth.ClaimsAdmin
			if syncClaims {
				var creds *string
				if credentialsFile != "" {
					creds = &credentialsFile
				}
				_, fbAuth, _, err := gcp.InitFirebase(ctx, creds)
				if err != nil {
					return fmt.Errorf("init firebase for claims sync: %w", err)
				}
				claimsAdmin = platformauth.NewFirebaseClaimsAdmin(fbAuth)
			}

			svc := service.New(repo.NewDocstoreRepository(s), claimsAdmin)
			claims, err := svc.SetRoles(ctx, tenantID, uid, flagsForRole(parsed))
			if err != nil {
				return fmt.Errorf("set role: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Role set: %s is %s in %s (claims: %v)\n", uid, parsed, tenantID, claims)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (omit to use Firestore)")
	c.Flags().StringVar(&credentialsFile, "credentials-file", "", "Firebase service account file")
	c.Flags().StringVar(&tenantID, "tenant-id", "", "Tenant id")
	c.Flags().StringVar(&uid, "uid", "", "User id")
	c.Flags().StringVar(&role, "role", "", "Role (admin, kitchen, waiter, delivery, cashier, customer)")
	c.Flags().BoolVar(&syncClaims, "sync-claims", false, "Mirror the role into Firebase custom claims")

	_ = c.MarkFlagRequired("tenant-id")
	_ = c.MarkFlagRequired("uid")
	_ = c.MarkFlagRequired("role")

	return c
}

func listCommand() *cobra.Command {
	var (
		databaseURL     string
		credentialsFile string
		tenantID        string
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "List the staff members of a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, cleanup, err := clistore.Open(ctx, databaseURL, credentialsFile)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := service.New(repo.NewDocstoreRepository(s), nil)
			members, err := svc.ListMembers(ctx, tenantID)
			if err != nil {
				return fmt.Errorf("list members: %w", err)
			}

			for _, m := range members {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.UID, m.Role)
			}
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (omit to use Firestore)")
	c.Flags().StringVar(&credentialsFile, "credentials-file", "", "Firebase service account file")
	c.Flags().StringVar(&tenantID, "tenant-id", "", "Tenant id")

	_ = c.MarkFlagRequired("tenant-id")

	return c
}

func flagsForRole(role service.Role) platformauth.RoleFlags {
	switch role {
	case service.RoleAdmin:
		return platformauth.RoleFlags{Admin: true}
	case service.RoleKitchen:
		return platformauth.RoleFlags{Kitchen: true}
	case service.RoleWaiter:
		return platformauth.RoleFlags{Waiter: true}
	case service.RoleDelivery:
		return platformauth.RoleFlags{Delivery: true}
	case service.RoleCashier:
		return platformauth.RoleFlags{Cashier: true}
	}
	return platformauth.RoleFlags{}
}
