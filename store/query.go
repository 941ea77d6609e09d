package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// QueryOption narrows or orders the result of Store.Documents.
type QueryOption func(*query)

type filter struct {
	field string
	op    string
	value any
}

type query struct {
	filters []filter
	orderBy string
}

// Where adds a field filter. Supported ops: "==", "<", "<=", ">", ">=",
// "in" (value must be a slice).
func Where(field, op string, value any) QueryOption {
	return func(q *query) {
		q.filters = append(q.filters, filter{field: field, op: op, value: value})
	}
}

// OrderBy sorts results ascending by the given field. Documents missing
// the field sort first.
func OrderBy(field string) QueryOption {
	return func(q *query) {
		q.orderBy = field
	}
}

func buildQuery(opts []QueryOption) query {
	var q query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

func (q query) matches(data map[string]any) bool {
	for _, f := range q.filters {
		if !f.matches(data[f.field]) {
			return false
		}
	}
	return true
}

func (f filter) matches(got any) bool {
	switch f.op {
	case "==":
		return compareValues(got, f.value) == 0
	case "<":
		return compareValues(got, f.value) < 0
	case "<=":
		return compareValues(got, f.value) <= 0
	case ">":
		return compareValues(got, f.value) > 0
	case ">=":
		return compareValues(got, f.value) >= 0
	case "in":
		for _, want := range toSlice(f.value) {
			if compareValues(got, want) == 0 {
				return true
			}
		}
		return false
	}
	return false
}

func (q query) sortDocs(docs []Document) {
	if q.orderBy == "" {
		// Deterministic default order.
		sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
		return
	}
	field := q.orderBy
	sort.SliceStable(docs, func(i, j int) bool {
		return compareValues(docs[i].Data[field], docs[j].Data[field]) < 0
	})
}

func toSlice(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	}
	return nil
}

// compareValues orders two document field values. Numbers compare
// numerically regardless of concrete type, since JSON decoding yields
// float64 while in-memory data may hold ints.
func compareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, aIsStr := asString(a)
	bs, bIsStr := asString(b)
	if aIsStr && bIsStr {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	}
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	// Fall back to string forms so mixed types still order deterministically.
	fa, fb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
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
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case time.Time:
		return s.UTC().Format(time.RFC3339Nano), true
	}
	return "", false
}
