package tenant

import (
	"context"
)

// Space captures the resolved tenant metadata for a request. It is attached
// to the context by middleware once the tenant has been resolved from the
// request signals and loaded from the registry.
type Space struct {
	// ID is the canonical tenant identifier (DNS-safe slug, partition key).
	ID          string
	DisplayName string
	Currency    string
	Disabled    bool
}

type ctxKey string

const spaceKey ctxKey = "ORDERDESK_TENANT_SPACE"

// WithSpace returns a derived context carrying the tenant Space.
func WithSpace(ctx context.Context, space Space) context.Context {
	return context.WithValue(ctx, spaceKey, space)
}

// FromContext extracts the tenant Space and a boolean indicating presence.
func FromContext(ctx context.Context) (Space, bool) {
	v := ctx.Value(spaceKey)
	if v == nil {
		return Space{}, false
	}
	space, ok := v.(Space)
	return space, ok
}
