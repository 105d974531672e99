package root

import (
	"github.com/orderdesk/orderdesk-saas/apps/cli/cmd/auth"
	"github.com/orderdesk/orderdesk-saas/apps/cli/cmd/member"
	"github.com/orderdesk/orderdesk-saas/apps/cli/cmd/tenant"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(tenant.Command())
	Root().AddCommand(member.Command())
}
