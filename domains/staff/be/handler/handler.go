package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/domains/staff/be/service"
	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
	"github.com/orderdesk/orderdesk-saas/platform/go/httpx"
	"github.com/orderdesk/orderdesk-saas/platform/go/logging"
	"github.com/orderdesk/orderdesk-saas/platform/go/tenant"
)

// Handler exposes staff role management under /admin.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("staff service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

type setRolesRequest struct {
	Admin    *bool `json:"admin,omitempty"`
	Kitchen  *bool `json:"kitchen,omitempty"`
	Waiter   *bool `json:"waiter,omitempty"`
	Delivery *bool `json:"delivery,omitempty"`
	Cashier  *bool `json:"cashier,omitempty"`
}

type setRolesResponse struct {
	OK     bool           `json:"ok"`
	Claims map[string]any `json:"claims"`
}

// SetRoles implements PATCH /admin/users/{uid}/roles. Only tenant admins can
// change roles; omitted flags default to false (full replacement, matching
// the claims shape written back to the identity provider).
func (h *Handler) SetRoles(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: "tenant required"})
		return
	}

	identity, _ := platformauth.IdentityFromContext(r.Context())
	if err := h.svc.RequireAdmin(r.Context(), space.ID, identity); err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "uid is required"})
		return
	}

	var req setRolesRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	flags := platformauth.RoleFlags{
		Admin:    boolValue(req.Admin),
		Kitchen:  boolValue(req.Kitchen),
		Waiter:   boolValue(req.Waiter),
		Delivery: boolValue(req.Delivery),
		Cashier:  boolValue(req.Cashier),
	}

	claims, err := h.svc.SetRoles(r.Context(), space.ID, uid, flags)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, setRolesResponse{OK: true, Claims: claims})
}

type memberResponse struct {
	UID          string `json:"uid"`
	Role         string `json:"role"`
	LandingRoute string `json:"landingRoute"`
}

// ListMembers implements GET /admin/users.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r, h.logger)

	space, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: "tenant required"})
		return
	}

	identity, _ := platformauth.IdentityFromContext(r.Context())
	if err := h.svc.RequireAdmin(r.Context(), space.ID, identity); err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	members, err := h.svc.ListMembers(r.Context(), space.ID)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			UID:          m.UID,
			Role:         string(m.Role),
			LandingRoute: service.LandingRoute(m.Role),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func boolValue(v *bool) bool {
	return v != nil && *v
}
