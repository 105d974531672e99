// Package store opens the document store for CLI commands from flag values.
package store

import (
	"context"
	"fmt"

	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
	"github.com/orderdesk/orderdesk-saas/platform/go/gcp"
)

// Open connects to the Postgres docstore when databaseURL is set, otherwise
// to Firestore using the given credentials file (empty falls back to
// application default credentials). The returned func releases the backend.
func Open(ctx context.Context, databaseURL, credentialsFile string) (docstore.Store, func(), error) {
	if databaseURL != "" {
		pool, err := docstore.NewPool(ctx, docstore.PoolConfig{ConnString: databaseURL})
		if err != nil {
			return nil, nil, fmt.Errorf("init pool: %w", err)
		}
		s, err := docstore.NewPostgresStore(ctx, pool)
		if err != nil {
			docstore.ClosePool(pool)
			return nil, nil, fmt.Errorf("init postgres docstore: %w", err)
		}
		return s, func() { docstore.ClosePool(pool) }, nil
	}

	var creds *string
	if credentialsFile != "" {
		creds = &credentialsFile
	}
	_, _, fsClient, err := gcp.InitFirebase(ctx, creds)
	if err != nil {
		return nil, nil, fmt.Errorf("init firebase: %w", err)
	}
	return docstore.NewFirestoreStore(fsClient), func() { _ = fsClient.Close() }, nil
}
