package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// NewApp creates a Firebase App instance. A nil credentialsPath falls back to
// application default credentials.
func NewApp(ctx context.Context, credentialsPath *string) (*firebase.App, error) {
	if credentialsPath != nil && *credentialsPath != "" {
		sa := option.WithCredentialsFile(*credentialsPath)
		return firebase.NewApp(ctx, nil, sa)
	}
	return firebase.NewApp(ctx, nil)
}

// InitFirebase initializes the Firebase App and returns the Auth client and
// Firestore client used as the identity verifier and the document store.
func InitFirebase(ctx context.Context, credentialsPath *string) (*firebase.App, *firebaseauth.Client, *firestore.Client, error) {
	app, err := NewApp(ctx, credentialsPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	fbAuth, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize firebase auth: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize firestore: %w", err)
	}

	return app, fbAuth, fsClient, nil
}
