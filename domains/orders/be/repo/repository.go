package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/orderdesk/orderdesk-saas/domains/orders/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
)

// DocstoreRepository persists orders under each tenant's partition.
type DocstoreRepository struct {
	store docstore.Store
}

// NewDocstoreRepository constructs a DocstoreRepository.
func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	if store == nil {
		panic("orders repo: store is required")
	}
	return &DocstoreRepository{store: store}
}

func orderPath(tenantID, orderID string) string {
	return fmt.Sprintf("tenants/%s/orders/%s", tenantID, orderID)
}

func ordersCollection(tenantID string) string {
	return fmt.Sprintf("tenants/%s/orders", tenantID)
}

func (r *DocstoreRepository) GetOrder(ctx context.Context, tenantID, orderID string) (service.Order, error) {
	data, err := r.store.Get(ctx, orderPath(tenantID, orderID))
	if errors.Is(err, docstore.ErrNotFound) {
		return service.Order{}, service.ErrOrderNotFound
	}
	if err != nil {
		return service.Order{}, fmt.Errorf("get order %s/%s: %w", tenantID, orderID, err)
	}
	var o service.Order
	if err := docstore.Decode(data, &o); err != nil {
		return service.Order{}, err
	}
	return o, nil
}

func (r *DocstoreRepository) CreateOrder(ctx context.Context, tenantID string, o service.Order) error {
	path := orderPath(tenantID, o.ID)
	return r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		_, err := tx.Get(path)
		if err == nil {
			return fmt.Errorf("order %s already exists", o.ID)
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		data, err := docstore.Encode(o)
		if err != nil {
			return err
		}
		return tx.Set(path, data)
	})
}

// UpdateOrder re-reads the order and applies the mutation inside one
// transaction, so a concurrent update forces a retry against fresh state
// instead of silently overwriting it.
func (r *DocstoreRepository) UpdateOrder(ctx context.Context, tenantID, orderID string, apply func(service.Order) (service.Order, error)) (service.Order, error) {
	path := orderPath(tenantID, orderID)
	var updated service.Order
	err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		data, err := tx.Get(path)
		if errors.Is(err, docstore.ErrNotFound) {
			return service.ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		var current service.Order
		if err := docstore.Decode(data, &current); err != nil {
			return err
		}
		updated, err = apply(current)
		if err != nil {
			return err
		}
		out, err := docstore.Encode(updated)
		if err != nil {
			return err
		}
		return tx.Set(path, out)
	})
	if err != nil {
		return service.Order{}, err
	}
	return updated, nil
}

// ListOrders returns the tenant's orders newest first. The store's query
// surface has no set-membership operator, so status filters run as one
// equality query per status merged afterwards.
func (r *DocstoreRepository) ListOrders(ctx context.Context, tenantID string, statuses []service.Status, limit int) ([]service.Order, error) {
	collection := ordersCollection(tenantID)

	var docs []docstore.Document
	if len(statuses) == 0 {
		var err error
		docs, err = r.store.Query(ctx, collection, docstore.Query{
			OrderBy: "createdAt",
			Desc:    true,
			Limit:   limit,
		})
		if err != nil {
			return nil, fmt.Errorf("list orders %s: %w", tenantID, err)
		}
	} else {
		for _, status := range statuses {
			part, err := r.store.Query(ctx, collection, docstore.Query{
				Filters: []docstore.Filter{{Field: "status", Op: "==", Value: string(status)}},
				OrderBy: "createdAt",
				Desc:    true,
				Limit:   limit,
			})
			if err != nil {
				return nil, fmt.Errorf("list orders %s (%s): %w", tenantID, status, err)
			}
			docs = append(docs, part...)
		}
	}

	orders := make([]service.Order, 0, len(docs))
	for _, doc := range docs {
		var o service.Order
		if err := docstore.Decode(doc.Data, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

var _ service.Repository = (*DocstoreRepository)(nil)
