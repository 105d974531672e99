package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk-saas/database"
)

// PostgresStore implements Store over a single JSONB documents table. It is
// the self-hosted alternative to the Firestore backend; both expose identical
// semantics to the repositories.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const serializationFailure = "40001"
const txMaxAttempts = 3

// NewPostgresStore wraps a connection pool and applies the documents DDL.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("docstore: pool is required")
	}
	if _, err := pool.Exec(ctx, sqlassets.DocumentsSQL); err != nil {
		return nil, fmt.Errorf("apply documents schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, path string) (map[string]any, error) {
	return pgGet(ctx, s.pool, path)
}

func (s *PostgresStore) Set(ctx context.Context, path string, data map[string]any) error {
	return pgSet(ctx, s.pool, path, data)
}

func (s *PostgresStore) Merge(ctx context.Context, path string, data map[string]any) error {
	return pgMerge(ctx, s.pool, path, data)
}

func (s *PostgresStore) Delete(ctx context.Context, path string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE path = $1`, strings.Trim(path, "/"))
	return err
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	sql := strings.Builder{}
	sql.WriteString(`SELECT path, data FROM documents WHERE collection = $1`)
	args := []any{strings.Trim(collection, "/")}

	for _, f := range q.Filters {
		op, ok := sqlOp(f.Op)
		if !ok {
			return nil, fmt.Errorf("docstore: unsupported filter op %q", f.Op)
		}
		encoded, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("docstore: encode filter value: %w", err)
		}
		args = append(args, string(encoded))
		// jsonb ordering is total within a type, so range filters behave for
		// numbers and RFC3339 timestamp strings alike.
		fmt.Fprintf(&sql, ` AND data->%s %s $%d::jsonb`, quoteLiteral(f.Field), op, len(args))
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sql, ` ORDER BY data->%s %s`, quoteLiteral(q.OrderBy), dir)
	} else {
		sql.WriteString(` ORDER BY path ASC`)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sql, ` LIMIT %d`, q.Limit)
	}

	rows, err := s.pool.Query(ctx, sql.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}
	defer rows.Close()

	var results []Document
	for rows.Next() {
		var path string
		var data map[string]any
		if err := rows.Scan(&path, &data); err != nil {
			return nil, fmt.Errorf("docstore scan: %w", err)
		}
		_, id, err := SplitPath(path)
		if err != nil {
			return nil, err
		}
		results = append(results, Document{ID: id, Data: data})
	}
	return results, rows.Err()
}

func (s *PostgresStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < txMaxAttempts; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func (s *PostgresStore) runOnce(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin docstore tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&postgresTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type postgresTx struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *postgresTx) Get(path string) (map[string]any, error) {
	return pgGet(t.ctx, t.tx, path)
}

func (t *postgresTx) Set(path string, data map[string]any) error {
	return pgSet(t.ctx, t.tx, path, data)
}

func (t *postgresTx) Merge(path string, data map[string]any) error {
	return pgMerge(t.ctx, t.tx, path, data)
}

func (t *postgresTx) Delete(path string) error {
	_, err := t.tx.Exec(t.ctx, `DELETE FROM documents WHERE path = $1`, strings.Trim(path, "/"))
	return err
}

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgGet(ctx context.Context, q pgQuerier, path string) (map[string]any, error) {
	var data map[string]any
	err := q.QueryRow(ctx, `SELECT data FROM documents WHERE path = $1`, strings.Trim(path, "/")).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore get %s: %w", path, err)
	}
	return data, nil
}

func pgSet(ctx context.Context, q pgQuerier, path string, data map[string]any) error {
	collection, _, err := SplitPath(path)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO documents (path, collection, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		strings.Trim(path, "/"), collection, data)
	return err
}

func pgMerge(ctx context.Context, q pgQuerier, path string, data map[string]any) error {
	collection, _, err := SplitPath(path)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO documents (path, collection, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (path) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = now()`,
		strings.Trim(path, "/"), collection, data)
	return err
}

func sqlOp(op string) (string, bool) {
	switch op {
	case "==":
		return "=", true
	case "<", "<=", ">", ">=":
		return op, true
	default:
		return "", false
	}
}

// quoteLiteral renders a field name as a single-quoted SQL literal for jsonb
// subscripting. Field names come from repository code, never from callers.
func quoteLiteral(field string) string {
	return "'" + strings.ReplaceAll(field, "'", "''") + "'"
}

var _ Store = (*PostgresStore)(nil)
