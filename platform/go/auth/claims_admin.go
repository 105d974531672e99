package auth

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// ClaimsAdmin writes role claims back to the identity provider so the fast
// path (claims-carried roles) stays in sync with the member records.
type ClaimsAdmin interface {
	SetUserClaims(ctx context.Context, uid string, claims map[string]any) error
}

// FirebaseClaimsAdmin implements ClaimsAdmin over Firebase custom user claims.
type FirebaseClaimsAdmin struct {
	client *auth.Client
}

// NewFirebaseClaimsAdmin wraps an initialized Firebase Auth client.
func NewFirebaseClaimsAdmin(client *auth.Client) *FirebaseClaimsAdmin {
	if client == nil {
		panic("auth: firebase client is required")
	}
	return &FirebaseClaimsAdmin{client: client}
}

func (a *FirebaseClaimsAdmin) SetUserClaims(ctx context.Context, uid string, claims map[string]any) error {
	return a.client.SetCustomUserClaims(ctx, uid, claims)
}

var _ ClaimsAdmin = (*FirebaseClaimsAdmin)(nil)
