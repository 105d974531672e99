package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation suitable for tests and
// early development. Query semantics mirror the Firestore backend closely
// enough for the repositories built on top of it.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(path)
}

func (s *MemoryStore) getLocked(path string) (map[string]any, error) {
	data, ok := s.docs[strings.Trim(path, "/")]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(data), nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(path, data)
	return nil
}

func (s *MemoryStore) setLocked(path string, data map[string]any) {
	s.docs[strings.Trim(path, "/")] = cloneDoc(data)
}

func (s *MemoryStore) Merge(ctx context.Context, path string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(path, data)
	return nil
}

func (s *MemoryStore) mergeLocked(path string, data map[string]any) {
	key := strings.Trim(path, "/")
	current, ok := s.docs[key]
	if !ok {
		current = make(map[string]any, len(data))
	}
	for k, v := range cloneDoc(data) {
		current[k] = v
	}
	s.docs[key] = current
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, strings.Trim(path, "/"))
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.Trim(collection, "/") + "/"
	results := make([]Document, 0)
	for path, data := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		// Direct children only; nested subcollection docs have further slashes.
		id := strings.TrimPrefix(path, prefix)
		if strings.Contains(id, "/") {
			continue
		}
		if !matchesFilters(data, q.Filters) {
			continue
		}
		results = append(results, Document{ID: id, Data: cloneDoc(data)})
	}

	if q.OrderBy != "" {
		sort.Slice(results, func(i, j int) bool {
			less := compareValues(results[i].Data[q.OrderBy], results[j].Data[q.OrderBy]) < 0
			if q.Desc {
				return !less
			}
			return less
		})
	} else {
		sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	}

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	// Whole-store exclusive lock stands in for real transactional isolation.
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: make(map[string]stagedWrite)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commitLocked()
	return nil
}

type stagedWrite struct {
	data   map[string]any
	merge  bool
	delete bool
}

type memoryTx struct {
	store  *MemoryStore
	staged map[string]stagedWrite
}

func (t *memoryTx) Get(path string) (map[string]any, error) {
	if len(t.staged) > 0 {
		return nil, fmt.Errorf("docstore: reads must precede writes in a transaction")
	}
	return t.store.getLocked(path)
}

func (t *memoryTx) Set(path string, data map[string]any) error {
	t.staged[strings.Trim(path, "/")] = stagedWrite{data: cloneDoc(data)}
	return nil
}

func (t *memoryTx) Merge(path string, data map[string]any) error {
	t.staged[strings.Trim(path, "/")] = stagedWrite{data: cloneDoc(data), merge: true}
	return nil
}

func (t *memoryTx) Delete(path string) error {
	t.staged[strings.Trim(path, "/")] = stagedWrite{delete: true}
	return nil
}

func (t *memoryTx) commitLocked() {
	for path, w := range t.staged {
		switch {
		case w.delete:
			delete(t.store.docs, path)
		case w.merge:
			t.store.mergeLocked(path, w.data)
		default:
			t.store.setLocked(path, w.data)
		}
	}
}

func matchesFilters(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok {
			return false
		}
		cmp := compareValues(v, f.Value)
		switch f.Op {
		case "==":
			if cmp != 0 {
				return false
			}
		case "<":
			if cmp >= 0 {
				return false
			}
		case "<=":
			if cmp > 0 {
				return false
			}
		case ">":
			if cmp <= 0 {
				return false
			}
		case ">=":
			if cmp < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func compareValues(a, b any) int {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as := fmt.Sprintf("%v", a)
	bs := fmt.Sprintf("%v", b)
	return strings.Compare(as, bs)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func cloneDoc(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
