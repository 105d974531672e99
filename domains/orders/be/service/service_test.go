package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk-saas/domains/orders/be/repo"
	"github.com/orderdesk/orderdesk-saas/domains/orders/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
)

func newOrderService(t *testing.T) (*service.Service, docstore.Store) {
	t.Helper()
	store := docstore.NewMemoryStore()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := service.NewWithClock(repo.NewDocstoreRepository(store), func() time.Time { return fixed })
	return svc, store
}

func TestPlaceAndGet(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	placed, err := svc.Place(ctx, "acme", service.Order{
		ID:            "o1",
		Type:          service.TypeDineIn,
		Currency:      "USD",
		SubtotalCents: 2000,
		TotalCents:    2200,
		Table:         "7",
	})
	require.NoError(t, err)
	require.Equal(t, service.StatusPlaced, placed.Status)
	require.False(t, placed.CreatedAt.IsZero())
	require.Nil(t, placed.ClosedAt)

	got, err := svc.Get(ctx, "acme", "o1")
	require.NoError(t, err)
	require.Equal(t, placed.TotalCents, got.TotalCents)
	require.Equal(t, "7", got.Table)
}

func TestPlaceValidation(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, "acme", service.Order{Type: service.TypeDineIn})
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Place(ctx, "acme", service.Order{ID: "o1", Type: service.OrderType("pickup")})
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newOrderService(t)

	_, err := svc.Get(context.Background(), "acme", "missing")
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestTransitionHappyPath(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, "acme", service.Order{ID: "o1", Type: service.TypeDineIn})
	require.NoError(t, err)

	for _, raw := range []string{"kitchen_in_progress", "kitchen_done", "ready_to_close"} {
		_, err = svc.Transition(ctx, "acme", "o1", raw)
		require.NoError(t, err, "transition to %s", raw)
	}

	closed, err := svc.Transition(ctx, "acme", "o1", "Completed")
	require.NoError(t, err)
	require.Equal(t, service.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	// The new status is persisted, not just echoed.
	got, err := svc.Get(ctx, "acme", "o1")
	require.NoError(t, err)
	require.Equal(t, service.StatusClosed, got.Status)
}

func TestTransitionIllegalEdgeIsConflict(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, "acme", service.Order{ID: "o1", Type: service.TypeDineIn})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, "acme", "o1", "closed")
	require.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	var transitionErr *service.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, service.StatusPlaced, transitionErr.From)
	require.Equal(t, service.StatusClosed, transitionErr.To)

	// Failed attempt must not mutate the stored order.
	got, err := svc.Get(ctx, "acme", "o1")
	require.NoError(t, err)
	require.Equal(t, service.StatusPlaced, got.Status)
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, "acme", service.Order{ID: "o1", Type: service.TypeDineIn})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, "acme", "o1", "bogus")
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestTransitionMissingOrder(t *testing.T) {
	svc, _ := newOrderService(t)

	_, err := svc.Transition(context.Background(), "acme", "missing", "placed")
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListFiltersByStatus(t *testing.T) {
	svc, store := newOrderService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []service.Order{
		{ID: "o1", Type: service.TypeDineIn, Status: service.StatusPlaced, CreatedAt: base},
		{ID: "o2", Type: service.TypeDineIn, Status: service.StatusClosed, CreatedAt: base.Add(time.Minute)},
		{ID: "o3", Type: service.TypeDelivery, Status: service.StatusOnTheWay, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, o := range seed {
		data, err := docstore.Encode(o)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "tenants/acme/orders/"+o.ID, data))
	}

	all, err := svc.List(ctx, "acme", nil, 50)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "o3", all[0].ID)

	open, err := svc.List(ctx, "acme", []service.Status{service.StatusPlaced, service.StatusOnTheWay}, 50)
	require.NoError(t, err)
	require.Len(t, open, 2)
	require.Equal(t, "o3", open[0].ID)
	require.Equal(t, "o1", open[1].ID)

	limited, err := svc.List(ctx, "acme", nil, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "o3", limited[0].ID)
}

func TestOrdersAreTenantScoped(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.Place(ctx, "acme", service.Order{ID: "o1", Type: service.TypeDineIn})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "bistro", "o1")
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
