package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// Document is a single stored document: a slash-separated path plus its
// field data. Paths alternate collection/id segments, e.g.
// "dailyTodoLists/2025-06-01/prepTasks/abc123".
type Document struct {
	Path string
	Data map[string]any
}

// ID returns the last path segment.
func (d Document) ID() string {
	idx := strings.LastIndex(d.Path, "/")
	if idx < 0 {
		return d.Path
	}
	return d.Path[idx+1:]
}

// DataTo unmarshals the document data into v via a JSON round trip, so the
// same struct tags work for documents coming from either backend.
func (d Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// DataFrom converts a tagged struct into document field data.
func DataFrom(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Write is one entry of an atomic batch: a set (optionally with merge
// semantics) or a delete of a single document path.
type Write struct {
	Path   string
	Data   map[string]any
	Merge  bool
	Delete bool
}

// Set stages a full overwrite of the document at path.
func Set(path string, data map[string]any) Write {
	return Write{Path: path, Data: data}
}

// SetMerge stages a write that overlays data onto any existing fields
// instead of clobbering them.
func SetMerge(path string, data map[string]any) Write {
	return Write{Path: path, Data: data, Merge: true}
}

// Delete stages removal of the document at path. Deleting an absent
// document is a no-op, as in the managed store this replaces.
func Delete(path string) Write {
	return Write{Path: path, Delete: true}
}

// ChangeKind classifies a committed write for trigger dispatch.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeUpdated
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	}
	return "unknown"
}

// Change describes one document mutation from a committed batch, with
// before/after snapshots. It is what trigger handlers receive in place of
// the managed platform's write events.
type Change struct {
	Kind   ChangeKind
	Path   string
	Before map[string]any
	After  map[string]any
}

// Listener receives the changes of a batch after it has committed.
type Listener func(ctx context.Context, changes []Change)

// Store is the document store contract. Query operators supported by
// Documents are "==", "<", "<=", ">", ">=" and "in".
type Store interface {
	// Get fetches one document, or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)
	// Documents lists a collection, applying any Where/OrderBy options.
	Documents(ctx context.Context, collection string, opts ...QueryOption) ([]Document, error)
	// BatchWrite applies all writes atomically: either every write
	// commits or none do.
	BatchWrite(ctx context.Context, writes []Write) error
}

// collectionOf returns the parent collection path of a document path.
func collectionOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func validateDocPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty document path")
	}
	segs := strings.Split(path, "/")
	if len(segs)%2 != 0 {
		return fmt.Errorf("invalid document path %q: odd number of segments", path)
	}
	for _, s := range segs {
		if s == "" {
			return fmt.Errorf("invalid document path %q: empty segment", path)
		}
	}
	return nil
}

func validateWrites(writes []Write) error {
	for _, w := range writes {
		if err := validateDocPath(w.Path); err != nil {
			return err
		}
		if !w.Delete && w.Data == nil {
			return fmt.Errorf("set of %q has no data", w.Path)
		}
	}
	return nil
}

// cloneData deep-copies document data so callers can never mutate stored
// state through a returned snapshot.
func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneData(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
