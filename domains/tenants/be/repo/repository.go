package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/orderdesk/orderdesk-saas/domains/tenants/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
)

// DocstoreRepository persists tenants and subdomain reservations in the
// document store. Tenant documents are keyed by their slug so existence
// checks are single reads.
type DocstoreRepository struct {
	store docstore.Store
}

// NewDocstoreRepository constructs a DocstoreRepository.
func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	if store == nil {
		panic("tenants repo: store is required")
	}
	return &DocstoreRepository{store: store}
}

func tenantPath(id string) string {
	return "tenants/" + id
}

func reservationPath(name string) string {
	return "subdomainReservations/" + name
}

func (r *DocstoreRepository) GetTenant(ctx context.Context, id string) (service.Tenant, error) {
	data, err := r.store.Get(ctx, tenantPath(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return service.Tenant{}, service.ErrNotFound
	}
	if err != nil {
		return service.Tenant{}, fmt.Errorf("get tenant %s: %w", id, err)
	}
	var t service.Tenant
	if err := docstore.Decode(data, &t); err != nil {
		return service.Tenant{}, err
	}
	return t, nil
}

func (r *DocstoreRepository) CreateTenant(ctx context.Context, t service.Tenant) (service.Tenant, error) {
	// Transactional existence check closes the race between two concurrent
	// signups that both passed the service-level re-check.
	err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		_, err := tx.Get(tenantPath(t.ID))
		if err == nil {
			return service.ErrConflict
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		data, err := docstore.Encode(t)
		if err != nil {
			return err
		}
		return tx.Set(tenantPath(t.ID), data)
	})
	if err != nil {
		return service.Tenant{}, err
	}
	return t, nil
}

func (r *DocstoreRepository) GetReservation(ctx context.Context, name string) (service.Reservation, error) {
	data, err := r.store.Get(ctx, reservationPath(name))
	if errors.Is(err, docstore.ErrNotFound) {
		return service.Reservation{}, service.ErrNotFound
	}
	if err != nil {
		return service.Reservation{}, fmt.Errorf("get reservation %s: %w", name, err)
	}
	var res service.Reservation
	if err := docstore.Decode(data, &res); err != nil {
		return service.Reservation{}, err
	}
	return res, nil
}

func (r *DocstoreRepository) PutReservation(ctx context.Context, res service.Reservation) error {
	data, err := docstore.Encode(res)
	if err != nil {
		return err
	}
	// Last-writer-wins by design; the arbiter's hold is advisory.
	return r.store.Set(ctx, reservationPath(res.Name), data)
}

var _ service.Repository = (*DocstoreRepository)(nil)
