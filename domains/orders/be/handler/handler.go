package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/domains/orders/be/service"
	staffservice "github.com/orderdesk/orderdesk-saas/domains/staff/be/service"
	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
	"github.com/orderdesk/orderdesk-saas/platform/go/httpx"
	"github.com/orderdesk/orderdesk-saas/platform/go/logging"
	"github.com/orderdesk/orderdesk-saas/platform/go/tenant"
)

// Handler exposes the staff-facing order endpoints under /admin.
type Handler struct {
	svc    *service.Service
	staff  *staffservice.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, staff *staffservice.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("orders service is required")
	}
	if staff == nil {
		panic("staff service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, staff: staff, logger: logger}
}

func (h *Handler) requireStaff(w http.ResponseWriter, r *http.Request) (tenant.Space, bool) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: "tenant required"})
		return tenant.Space{}, false
	}
	identity, _ := platformauth.IdentityFromContext(r.Context())
	err := h.staff.RequireAnyRole(r.Context(), space.ID, identity, staffservice.StaffRoles...)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return tenant.Space{}, false
	}
	return space, true
}

type orderResponse struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	Currency      string   `json:"currency"`
	SubtotalCents int64    `json:"subtotalCents"`
	DiscountCents int64    `json:"discountCents"`
	ServiceCents  int64    `json:"serviceCents"`
	TaxCents      int64    `json:"taxCents"`
	TipCents      int64    `json:"tipCents"`
	TotalCents    int64    `json:"totalCents"`
	Table         string   `json:"table,omitempty"`
	NextStatuses  []string `json:"nextStatuses"`
}

func toOrderResponse(o service.Order) orderResponse {
	next := service.NextStatuses(o.Status, o.Type)
	nextRaw := make([]string, len(next))
	for i, s := range next {
		nextRaw[i] = string(s)
	}
	return orderResponse{
		ID:            o.ID,
		Type:          string(o.Type),
		Status:        string(o.Status),
		Currency:      o.Currency,
		SubtotalCents: o.SubtotalCents,
		DiscountCents: o.DiscountCents,
		ServiceCents:  o.ServiceCents,
		TaxCents:      o.TaxCents,
		TipCents:      o.TipCents,
		TotalCents:    o.TotalCents,
		Table:         o.Table,
		NextStatuses:  nextRaw,
	}
}

// GetOrder implements GET /admin/orders/{orderId}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := h.requireStaff(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderId")

	o, err := h.svc.Get(r.Context(), space.ID, orderID)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders implements GET /admin/orders?status=...&limit=....
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := h.requireStaff(w, r)
	if !ok {
		return
	}

	var statuses []service.Status
	for _, raw := range r.URL.Query()["status"] {
		status, err := service.NormalizeStatus(raw)
		if err != nil {
			httpx.WriteJSON(w, http.StatusUnprocessableEntity, httpx.ErrorBody{
				Error: err.Error(), Code: "STATUS_UNKNOWN",
			})
			return
		}
		statuses = append(statuses, status)
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	orders, err := h.svc.List(r.Context(), space.ID, statuses, limit)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus implements POST /admin/orders/{orderId}/status. Illegal
// transitions come back as 409 so clients can refresh and retry with
// corrected intent instead of treating it as a server fault.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := h.requireStaff(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderId")

	var req statusUpdateRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "status is required"})
		return
	}

	o, err := h.svc.Transition(r.Context(), space.ID, orderID, req.Status)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}
