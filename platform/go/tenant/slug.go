package tenant

import (
	"regexp"
	"strings"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

const (
	// MinLength and MaxLength bound tenant identifiers to DNS label limits.
	MinLength = 3
	MaxLength = 63
)

var (
	invalidChars    = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
	idPattern       = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
)

// reservedIDs are names that can never become tenant subdomains because they
// collide with platform routing or static asset hosts.
var reservedIDs = map[string]struct{}{
	"www": {}, "app": {}, "api": {}, "admin": {}, "mail": {}, "root": {},
	"support": {}, "static": {}, "assets": {}, "cdn": {}, "img": {},
	"images": {}, "files": {}, "docs": {}, "status": {}, "billing": {},
	"dashboard": {}, "login": {}, "signup": {}, "dev": {}, "staging": {},
}

// Normalize converts arbitrary input into a DNS-safe candidate identifier:
// lowercase, every character outside [a-z0-9-] replaced with '-', repeated
// hyphens collapsed, leading/trailing hyphens stripped, truncated to 63
// characters. Total and idempotent; empty input yields the empty string.
func Normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = invalidChars.ReplaceAllString(s, "-")
	s = repeatedHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-")
	}
	return s
}

// AssertValid rejects identifiers that cannot serve as tenant subdomains.
// Messages are part of the observable API; they are surfaced to end users by
// the subdomain availability check.
func AssertValid(id string) error {
	switch {
	case id == "":
		return apperror.New(apperror.KindValidation, "TENANT_ID_EMPTY", "subdomain is required")
	case len(id) < MinLength:
		return apperror.Validationf("TENANT_ID_TOO_SHORT", "subdomain must be at least %d characters", MinLength)
	case len(id) > MaxLength:
		return apperror.Validationf("TENANT_ID_TOO_LONG", "subdomain must be at most %d characters", MaxLength)
	case !idPattern.MatchString(id):
		return apperror.New(apperror.KindValidation, "TENANT_ID_INVALID",
			"subdomain must start and end with a letter or digit and may contain hyphens in between")
	}
	if _, reserved := reservedIDs[id]; reserved {
		return apperror.Validationf("TENANT_ID_RESERVED", "subdomain %q is reserved", id)
	}
	return nil
}

// IsReserved reports whether id belongs to the reserved-word set.
func IsReserved(id string) bool {
	_, ok := reservedIDs[id]
	return ok
}
