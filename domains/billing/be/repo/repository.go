package repo

import (
	"context"
	"fmt"

	"github.com/orderdesk/orderdesk-saas/domains/billing/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
)

// upgradeOrders live outside the tenant partitions: checkout happens before
// the customer has any in-tenant role, and superadmin billing views read
// across tenants.
const upgradeOrdersCollection = "upgradeOrders"

// DocstoreRepository persists subscription upgrade orders.
type DocstoreRepository struct {
	store docstore.Store
}

// NewDocstoreRepository constructs a DocstoreRepository.
func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	if store == nil {
		panic("billing repo: store is required")
	}
	return &DocstoreRepository{store: store}
}

func orderPath(orderID string) string {
	return upgradeOrdersCollection + "/" + orderID
}

func (r *DocstoreRepository) PutUpgradeOrder(ctx context.Context, o service.UpgradeOrder) error {
	data, err := docstore.Encode(o)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, orderPath(o.ID), data)
}

func (r *DocstoreRepository) FindOpenOrder(ctx context.Context, tenantID string) (service.UpgradeOrder, error) {
	docs, err := r.store.Query(ctx, upgradeOrdersCollection, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "tenantId", Op: "==", Value: tenantID},
			{Field: "status", Op: "==", Value: string(service.UpgradePending)},
		},
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   1,
	})
	if err != nil {
		return service.UpgradeOrder{}, fmt.Errorf("find open order for %s: %w", tenantID, err)
	}
	if len(docs) == 0 {
		return service.UpgradeOrder{}, service.ErrNoOpenOrder
	}
	var o service.UpgradeOrder
	if err := docstore.Decode(docs[0].Data, &o); err != nil {
		return service.UpgradeOrder{}, err
	}
	return o, nil
}

var _ service.Repository = (*DocstoreRepository)(nil)
