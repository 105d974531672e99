package tenant

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// HeaderTenantID is the explicit tenant header set by the edge rewrite.
	HeaderTenantID = "X-Tenant-Id"
	// HeaderRestaurantID is the legacy header still sent by older storefront builds.
	HeaderRestaurantID = "X-Restaurant-Id"
	// PathMarker precedes the tenant segment in rewritten storefront paths,
	// e.g. /t/<tenant>/menu.
	PathMarker = "t"
)

// ResolveCandidate extracts the raw tenant identifier candidate from a request
// using strict precedence: explicit header, legacy header, route parameter
// (tenantId then tenant), then the path segment following the rewrite marker.
// The returned value is unvalidated; callers must Normalize and AssertValid.
// Returns "" when no signal is present.
func ResolveCandidate(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(HeaderTenantID)); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get(HeaderRestaurantID)); v != "" {
		return v
	}
	if v := routeParam(r, "tenantId"); v != "" {
		return v
	}
	if v := routeParam(r, "tenant"); v != "" {
		return v
	}
	return markerSegment(r.URL.Path)
}

func routeParam(r *http.Request, name string) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if v := strings.TrimSpace(rctx.URLParam(name)); v != "" {
			return v
		}
	}
	// Query params act as route params for pre-router callers (edge rewrites).
	if vs, ok := r.URL.Query()[name]; ok && len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func markerSegment(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == PathMarker && i+1 < len(segments) {
			return strings.TrimSpace(segments[i+1])
		}
	}
	return ""
}
