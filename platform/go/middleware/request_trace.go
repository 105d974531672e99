package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
	platformlogging "github.com/orderdesk/orderdesk-saas/platform/go/logging"
	"github.com/orderdesk/orderdesk-saas/platform/go/requesttrace"
)

// RequestTrace populates the context with request-scoped AuditInfo so
// services can stamp audit fields onto mutations. Runs after authentication
// middleware so the identity is available when present.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := platformlogging.FromRequest(r, nil)
		requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)

		var audit requesttrace.AuditInfo
		if identity, ok := platformauth.IdentityFromContext(r.Context()); ok && identity != nil {
			var err error
			audit, err = requesttrace.FromIdentity(identity, requestID)
			if err != nil {
				if logger != nil {
					logger.Error("build audit info from identity", zap.Error(err))
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		} else {
			audit = requesttrace.Anonymous(requestID)
		}

		ctx := requesttrace.IntoContext(r.Context(), audit)
		if logger != nil {
			fields := []zap.Field{zap.String("actor_kind", string(audit.ActorKind))}
			if audit.UserID != nil && *audit.UserID != "" {
				fields = append(fields, zap.String("user_id", *audit.UserID))
			}
			logger = logger.With(fields...)
			ctx = platformlogging.WithLogger(ctx, logger)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
