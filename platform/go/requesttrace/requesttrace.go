package requesttrace

import (
	"context"
	"errors"

	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
)

type contextKey string

const ctxAuditInfo contextKey = "ORDERDESK_REQUEST_TRACE"

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindUser      ActorKind = "user"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata stamped onto mutations (order
// status changes, role updates). UserID is set only when ActorKind is user.
type AuditInfo struct {
	ActorKind ActorKind
	UserID    *string
	RequestID string
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	v := ctx.Value(ctxAuditInfo)
	if v == nil {
		return AuditInfo{}, false
	}
	audit, ok := v.(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an
// anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromIdentity builds an AuditInfo from a verified identity and a request ID.
func FromIdentity(identity *platformauth.Identity, requestID string) (AuditInfo, error) {
	if identity == nil {
		return AuditInfo{}, errors.New("identity is required to build audit info")
	}
	if identity.UID == "" {
		return AuditInfo{}, errors.New("user id is required to build audit info")
	}

	uid := identity.UID
	return AuditInfo{
		ActorKind: ActorKindUser,
		UserID:    &uid,
		RequestID: requestID,
	}, nil
}

// Anonymous builds an AuditInfo for unauthenticated requests (e.g., the
// subdomain availability check) where no user exists yet.
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// System builds an AuditInfo for background/system operations.
func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}
