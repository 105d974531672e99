package main

import (
	"net/http"

	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
)

// buildAuthMiddleware selects the token verifier. Requests without a token
// pass through anonymously; role checks happen per-endpoint against the
// member records.
func buildAuthMiddleware(cfg config, fbAuth *firebaseauth.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	var verify platformauth.VerifyFunc
	switch cfg.AuthProvider {
	case "firebase":
		if fbAuth == nil {
			logger.Fatal("firebase auth client not initialized for AUTH_PROVIDER=firebase")
		}
		verify = platformauth.FirebaseTokenVerifier(fbAuth)
	case "dev":
		logger.Warn("using dev auth middleware; do not use in production")
		verify = platformauth.UnsignedTokenVerifier()
	default:
		logger.Fatal("unsupported auth provider", zap.String("provider", cfg.AuthProvider))
	}

	return platformauth.JWT(verify)
}
