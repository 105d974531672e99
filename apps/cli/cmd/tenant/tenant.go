package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	clistore "github.com/orderdesk/orderdesk-saas/apps/cli/store"
	"github.com/orderdesk/orderdesk-saas/domains/tenants/be/repo"
	"github.com/orderdesk/orderdesk-saas/domains/tenants/be/service"
)

// Command groups tenant-related helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Tenant utilities (create/check)",
	}

	cmd.AddCommand(createCommand())
	cmd.AddCommand(checkCommand())
	return cmd
}

func createCommand() *cobra.Command {
	var (
		databaseURL     string
		credentialsFile string
		tenantID        string
		displayName     string
		currency        string
		createdBy       string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Commit a tenant record with the given subdomain id",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, cleanup, err := clistore.Open(ctx, databaseURL, credentialsFile)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := service.New(repo.NewDocstoreRepository(s))

			t, err := svc.Create(ctx, service.CreateInput{
				ID:          tenantID,
				DisplayName: strPtrOrNil(displayName),
				Currency:    currency,
				CreatedBy:   createdBy,
			})
			if err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tenant created: %s\n", t.ID)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (omit to use Firestore)")
	c.Flags().StringVar(&credentialsFile, "credentials-file", "", "Firebase service account file")
	c.Flags().StringVar(&tenantID, "tenant-id", "", "Subdomain id for the tenant")
	c.Flags().StringVar(&displayName, "display-name", "", "Display name for the tenant")
	c.Flags().StringVar(&currency, "currency", "USD", "Tenant pricing currency (ISO 4217)")
	c.Flags().StringVar(&createdBy, "created-by", "cli", "Creator identifier recorded on the tenant")

	_ = c.MarkFlagRequired("tenant-id")

	return c
}

func checkCommand() *cobra.Command {
	var (
		databaseURL     string
		credentialsFile string
		tenantID        string
	)

	c := &cobra.Command{
		Use:   "check",
		Short: "Check subdomain availability and place a short hold",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, cleanup, err := clistore.Open(ctx, databaseURL, credentialsFile)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := service.New(repo.NewDocstoreRepository(s))
			result := svc.CheckAndHold(ctx, tenantID, "cli")
			if result.Available {
				fmt.Fprintln(cmd.OutOrStdout(), "available")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unavailable: %s\n", result.Reason)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (omit to use Firestore)")
	c.Flags().StringVar(&credentialsFile, "credentials-file", "", "Firebase service account file")
	c.Flags().StringVar(&tenantID, "tenant-id", "", "Subdomain id to check")

	_ = c.MarkFlagRequired("tenant-id")

	return c
}

func strPtrOrNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
