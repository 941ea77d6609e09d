package store

import (
	"context"
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It backs the test suites and behaves
// exactly like GormStore: atomic batches, merge semantics, and post-commit
// change notification.
type MemStore struct {
	mu       sync.RWMutex
	docs     map[string]map[string]any
	listener Listener
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]map[string]any)}
}

// OnCommit registers the listener invoked after each successful batch.
// Must be called before the store is used.
func (s *MemStore) OnCommit(l Listener) {
	s.listener = l
}

func (s *MemStore) Get(ctx context.Context, path string) (Document, error) {
	if err := validateDocPath(path); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[path]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{Path: path, Data: cloneData(data)}, nil
}

func (s *MemStore) Documents(ctx context.Context, collection string, opts ...QueryOption) ([]Document, error) {
	q := buildQuery(opts)
	prefix := collection + "/"

	s.mu.RLock()
	var docs []Document
	for path, data := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		// Direct children only, not documents of nested sub-collections.
		if strings.Contains(path[len(prefix):], "/") {
			continue
		}
		if q.matches(data) {
			docs = append(docs, Document{Path: path, Data: cloneData(data)})
		}
	}
	s.mu.RUnlock()

	q.sortDocs(docs)
	return docs, nil
}

func (s *MemStore) BatchWrite(ctx context.Context, writes []Write) error {
	if err := validateWrites(writes); err != nil {
		return err
	}

	s.mu.Lock()
	changes := make([]Change, 0, len(writes))
	for _, w := range writes {
		before, existed := s.docs[w.Path]
		if w.Delete {
			if !existed {
				continue
			}
			delete(s.docs, w.Path)
			changes = append(changes, Change{Kind: ChangeDeleted, Path: w.Path, Before: cloneData(before)})
			continue
		}

		after := cloneData(w.Data)
		if w.Merge && existed {
			merged := cloneData(before)
			for k, v := range after {
				merged[k] = v
			}
			after = merged
		}
		s.docs[w.Path] = after

		kind := ChangeCreated
		if existed {
			kind = ChangeUpdated
		}
		changes = append(changes, Change{Kind: kind, Path: w.Path, Before: cloneData(before), After: cloneData(after)})
	}
	s.mu.Unlock()

	// Outside the lock: listeners may issue further batches.
	if s.listener != nil && len(changes) > 0 {
		s.listener(ctx, changes)
	}
	return nil
}
