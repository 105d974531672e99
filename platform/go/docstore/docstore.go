// Package docstore abstracts the tenant-partitioned document store consumed by
// the domain services: get-by-path, set-with-merge, delete, simple queries
// (equality/range with order-by and limit) and transactional read-modify-write.
// Backends: Firestore (production), Postgres JSONB, and an in-memory store for
// tests. Documents are flat string-keyed maps; domain packages convert to and
// from their structs via Encode/Decode.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a document does not exist at the given path.
var ErrNotFound = errors.New("docstore: document not found")

// Filter is a single field predicate. Op is one of ==, <, <=, >, >=.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Query captures the store's deliberately small query surface.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Document pairs a document id (last path segment) with its data.
type Document struct {
	ID   string
	Data map[string]any
}

// Reader is the read-only store surface.
type Reader interface {
	// Get loads the document at path ("tenants/acme/orders/o1"). ErrNotFound
	// when absent.
	Get(ctx context.Context, path string) (map[string]any, error)
	// Query runs q against a collection path ("tenants/acme/orders").
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
}

// Writer is the mutating store surface.
type Writer interface {
	// Set replaces the document at path.
	Set(ctx context.Context, path string, data map[string]any) error
	// Merge upserts only the provided top-level fields, preserving the rest.
	Merge(ctx context.Context, path string, data map[string]any) error
	Delete(ctx context.Context, path string) error
}

// Tx is the operation set available inside a transaction. Reads must happen
// before writes (Firestore constraint honored by all backends).
type Tx interface {
	Get(path string) (map[string]any, error)
	Set(path string, data map[string]any) error
	Merge(path string, data map[string]any) error
	Delete(path string) error
}

// Store is the full collaborator contract.
type Store interface {
	Reader
	Writer
	// RunTransaction executes fn atomically; the backend may invoke fn more
	// than once on contention, so fn must be side-effect free outside tx.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Encode converts a struct into the map shape stored by every backend, going
// through JSON so field tags and time formatting stay consistent across
// Firestore and Postgres.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode converts stored document data into the target struct.
func Decode(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// SplitPath separates a document path into its collection and document id.
func SplitPath(path string) (collection, id string, err error) {
	trimmed := strings.Trim(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 || idx == len(trimmed)-1 {
		return "", "", fmt.Errorf("invalid document path %q", path)
	}
	segments := strings.Split(trimmed, "/")
	if len(segments)%2 != 0 {
		return "", "", fmt.Errorf("document path %q must have an even number of segments", path)
	}
	return trimmed[:idx], trimmed[idx+1:], nil
}
