package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/domains/billing/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/httpx"
	"github.com/orderdesk/orderdesk-saas/platform/go/logging"
	platformtenant "github.com/orderdesk/orderdesk-saas/platform/go/tenant"
)

// Handler exposes the subscription upgrade endpoints.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("billing service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

type resolveOrderResponse struct {
	OrderID string `json:"orderId"`
}

// ResolveOrder implements GET /upgrade/resolve-order?tenantId=. The tenant
// id arrives as a query parameter because checkout resumption happens from
// the provider's return URL, outside any tenant subdomain.
func (h *Handler) ResolveOrder(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	raw := r.URL.Query().Get("tenantId")
	if raw == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "tenantId is required"})
		return
	}
	tenantID := platformtenant.Normalize(raw)
	if err := platformtenant.AssertValid(tenantID); err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	orderID, err := h.svc.ResolveOrder(r.Context(), tenantID)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resolveOrderResponse{OrderID: orderID})
}

type checkoutRequest struct {
	PlanID      string `json:"planId"`
	Provider    string `json:"provider"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

type checkoutResponse struct {
	OrderID      string `json:"orderId"`
	Provider     string `json:"provider"`
	Reference    string `json:"reference"`
	ClientSecret string `json:"clientSecret,omitempty"`
	ApproveURL   string `json:"approveUrl,omitempty"`
}

// Checkout implements POST /upgrade/checkout for the resolved tenant.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := platformtenant.FromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: "tenant required"})
		return
	}

	var req checkoutRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if req.PlanID == "" || req.Provider == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "planId and provider are required"})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = space.Currency
	}

	result, err := h.svc.Checkout(r.Context(), space.ID, req.PlanID, req.Provider, req.AmountCents, currency)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, checkoutResponse{
		OrderID:      result.Order.ID,
		Provider:     result.Order.Provider,
		Reference:    result.Intent.Reference,
		ClientSecret: result.Intent.ClientSecret,
		ApproveURL:   result.Intent.ApproveURL,
	})
}
