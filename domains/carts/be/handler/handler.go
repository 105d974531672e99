package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/domains/carts/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/httpx"
	"github.com/orderdesk/orderdesk-saas/platform/go/logging"
	"github.com/orderdesk/orderdesk-saas/platform/go/tenant"
)

// Handler exposes the public quote endpoint.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("carts service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Quote implements POST /cart/quote. The response totals are authoritative;
// clients must never compute their own. Semantic failures come back as 422
// with the machine code from the pricing engine.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: "tenant required"})
		return
	}

	var req service.QuoteRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	quote, err := h.svc.Quote(r.Context(), space.ID, req)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quote)
}
