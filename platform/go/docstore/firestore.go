package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on top of Cloud Firestore. Document paths
// map 1:1 onto Firestore document references.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	if client == nil {
		panic("docstore: firestore client is required")
	}
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, path string) (map[string]any, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		return nil, translateFirestoreErr(err)
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) Set(ctx context.Context, path string, data map[string]any) error {
	_, err := s.client.Doc(path).Set(ctx, data)
	return translateFirestoreErr(err)
}

func (s *FirestoreStore) Merge(ctx context.Context, path string, data map[string]any) error {
	_, err := s.client.Doc(path).Set(ctx, data, firestore.MergeAll)
	return translateFirestoreErr(err)
}

func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	_, err := s.client.Doc(path).Delete(ctx)
	return translateFirestoreErr(err)
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	fq := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	var results []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s: %w", collection, err)
		}
		results = append(results, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return results, nil
}

func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, tx: ftx})
	})
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) Get(path string) (map[string]any, error) {
	snap, err := t.tx.Get(t.client.Doc(path))
	if err != nil {
		return nil, translateFirestoreErr(err)
	}
	return snap.Data(), nil
}

func (t *firestoreTx) Set(path string, data map[string]any) error {
	return t.tx.Set(t.client.Doc(path), data)
}

func (t *firestoreTx) Merge(path string, data map[string]any) error {
	return t.tx.Set(t.client.Doc(path), data, firestore.MergeAll)
}

func (t *firestoreTx) Delete(path string) error {
	return t.tx.Delete(t.client.Doc(path))
}

func translateFirestoreErr(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

var _ Store = (*FirestoreStore)(nil)
