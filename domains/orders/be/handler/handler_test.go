package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	ordersrepo "github.com/orderdesk/orderdesk-saas/domains/orders/be/repo"
	"github.com/orderdesk/orderdesk-saas/domains/orders/be/service"
	staffrepo "github.com/orderdesk/orderdesk-saas/domains/staff/be/repo"
	staffservice "github.com/orderdesk/orderdesk-saas/domains/staff/be/service"
	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
	"github.com/orderdesk/orderdesk-saas/platform/go/tenant"
)

func newTestRouter(t *testing.T) (chi.Router, *service.Service) {
	t.Helper()

	store := docstore.NewMemoryStore()
	logger := zap.NewNop()
	staff := staffservice.New(staffrepo.NewDocstoreRepository(store), nil)
	orders := service.New(ordersrepo.NewDocstoreRepository(store))
	h := New(orders, staff, logger)

	r := chi.NewRouter()
	r.Get("/admin/orders", h.ListOrders)
	r.Get("/admin/orders/{orderId}", h.GetOrder)
	r.Post("/admin/orders/{orderId}/status", h.UpdateStatus)
	return r, orders
}

func asWaiter(r *http.Request) *http.Request {
	ctx := tenant.WithSpace(r.Context(), tenant.Space{ID: "acme", Currency: "USD"})
	ctx = platformauth.WithIdentity(ctx, &platformauth.Identity{
		UID:   "u1",
		Roles: platformauth.RoleFlags{Waiter: true},
	})
	return r.WithContext(ctx)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	router, orders := newTestRouter(t)

	_, err := orders.Place(context.Background(), "acme", service.Order{ID: "o1", Type: service.TypeDineIn})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := asWaiter(httptest.NewRequest("POST", "/admin/orders/o1/status",
		strings.NewReader(`{"status":"In-Progress"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status       string   `json:"status"`
		NextStatuses []string `json:"nextStatuses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "kitchen_in_progress", body.Status)
	require.Equal(t, []string{"kitchen_done", "cancelled"}, body.NextStatuses)
}

func TestUpdateStatusIllegalTransitionIs409(t *testing.T) {
	router, orders := newTestRouter(t)

	_, err := orders.Place(context.Background(), "acme", service.Order{ID: "o1", Type: service.TypeDineIn})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := asWaiter(httptest.NewRequest("POST", "/admin/orders/o1/status",
		strings.NewReader(`{"status":"closed"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INVALID_TRANSITION", body.Code)
}

func TestUpdateStatusUnknownStatusIs422(t *testing.T) {
	router, orders := newTestRouter(t)

	_, err := orders.Place(context.Background(), "acme", service.Order{ID: "o1", Type: service.TypeDineIn})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := asWaiter(httptest.NewRequest("POST", "/admin/orders/o1/status",
		strings.NewReader(`{"status":"bogus"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOrdersEndpointsRequireStaffRole(t *testing.T) {
	router, _ := newTestRouter(t)

	// No tenant in context.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Tenant but no identity.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/orders", nil)
	req = req.WithContext(tenant.WithSpace(req.Context(), tenant.Space{ID: "acme"}))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Identity without a staff role.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/admin/orders", nil)
	ctx := tenant.WithSpace(req.Context(), tenant.Space{ID: "acme"})
	ctx = platformauth.WithIdentity(ctx, &platformauth.Identity{UID: "u9"})
	router.ServeHTTP(rec, req.WithContext(ctx))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := asWaiter(httptest.NewRequest("GET", "/admin/orders/missing", nil))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersRejectsUnknownStatusFilter(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := asWaiter(httptest.NewRequest("GET", "/admin/orders?status=bogus", nil))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
