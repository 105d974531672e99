package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/domains/tenants/be/service"
	"github.com/orderdesk/orderdesk-saas/platform/go/httpx"
)

// Handler exposes the public subdomain availability endpoint.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tenants service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

type subdomainCheckRequest struct {
	DesiredSubdomain string `json:"desiredSubdomain"`
	// SessionId lets a signup renew its own hold; falls back to the request id.
	SessionID string `json:"sessionId,omitempty"`
}

type subdomainCheckResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// SubdomainCheck implements POST /subdomain-check. Always responds 200; every
// failure mode, including an unreadable body, is encoded in the response so
// this pre-authentication endpoint never leaks internal errors or statuses.
func (h *Handler) SubdomainCheck(w http.ResponseWriter, r *http.Request) {
	var req subdomainCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusOK, subdomainCheckResponse{
			Available: false,
			Reason:    "request body must be JSON with a desiredSubdomain field",
		})
		return
	}

	// Fall back to the source IP so repeat checks from the same signup renew
	// rather than block their own hold.
	holder := req.SessionID
	if holder == "" {
		holder = remoteHost(r)
	}

	result := h.svc.CheckAndHold(r.Context(), req.DesiredSubdomain, holder)
	httpx.WriteJSON(w, http.StatusOK, subdomainCheckResponse{
		Available: result.Available,
		Reason:    result.Reason,
	})
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
