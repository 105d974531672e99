package docstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres docstore integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	// An externally provisioned database wins over spinning up a container.
	if connString := os.Getenv("TEST_DATABASE_URL"); connString != "" {
		return storeFor(t, ctx, connString)
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("orderdesk"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return storeFor(t, ctx, connString)
}

func storeFor(t *testing.T, ctx context.Context, connString string) *PostgresStore {
	t.Helper()

	pool, err := NewPool(ctx, PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() { ClosePool(pool) })

	store, err := NewPostgresStore(ctx, pool)
	require.NoError(t, err)

	// Each test starts from an empty documents table; a reused external
	// database would otherwise leak rows between runs.
	_, err = pool.Exec(ctx, `TRUNCATE documents`)
	require.NoError(t, err)
	return store
}

func TestPostgresStoreCRUDAndQuery(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "tenants/acme")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "tenants/acme", map[string]any{"id": "acme", "currency": "USD"}))
	data, err := store.Get(ctx, "tenants/acme")
	require.NoError(t, err)
	require.Equal(t, "acme", data["id"])

	require.NoError(t, store.Merge(ctx, "tenants/acme", map[string]any{"currency": "EUR"}))
	data, err = store.Get(ctx, "tenants/acme")
	require.NoError(t, err)
	require.Equal(t, "acme", data["id"])
	require.Equal(t, "EUR", data["currency"])

	require.NoError(t, store.Set(ctx, "tenants/acme/orders/o1", map[string]any{"status": "placed", "total": float64(100)}))
	require.NoError(t, store.Set(ctx, "tenants/acme/orders/o2", map[string]any{"status": "closed", "total": float64(300)}))
	require.NoError(t, store.Set(ctx, "tenants/acme/orders/o3", map[string]any{"status": "placed", "total": float64(200)}))

	docs, err := store.Query(ctx, "tenants/acme/orders", Query{
		Filters: []Filter{{Field: "status", Op: "==", Value: "placed"}},
		OrderBy: "total",
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "o3", docs[0].ID)
	require.Equal(t, "o1", docs[1].ID)

	require.NoError(t, store.Delete(ctx, "tenants/acme"))
	_, err = store.Get(ctx, "tenants/acme")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreTransaction(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "counters/c1", map[string]any{"n": float64(1)}))

	err := store.RunTransaction(ctx, func(tx Tx) error {
		data, err := tx.Get("counters/c1")
		if err != nil {
			return err
		}
		n := data["n"].(float64)
		return tx.Set("counters/c1", map[string]any{"n": n + 1})
	})
	require.NoError(t, err)

	data, err := store.Get(ctx, "counters/c1")
	require.NoError(t, err)
	require.Equal(t, float64(2), data["n"])
}

func TestPostgresStoreTransactionRollsBackOnError(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tenants/acme", map[string]any{"id": "acme"}))

	sentinel := context.Canceled
	err := store.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Set("tenants/acme", map[string]any{"id": "changed"}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	data, err := store.Get(ctx, "tenants/acme")
	require.NoError(t, err)
	require.Equal(t, "acme", data["id"])
}
