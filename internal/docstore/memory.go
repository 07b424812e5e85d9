package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Memory implements Store with in-process concurrency safety. It backs tests
// and the dev mode of cmd/api; production uses the Postgres store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// MemoryOption configures Memory.
type MemoryOption func(*Memory)

// WithClock overrides the clock used to resolve server timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-memory document store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		docs: make(map[string]Document),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, path string) (Document, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (m *Memory) Set(ctx context.Context, path string, doc Document) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh := make(Document, len(doc))
	applyFields(fresh, doc, m.now())
	m.docs[path] = fresh
	return nil
}

func (m *Memory) Update(ctx context.Context, path string, fields Document) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		return ErrNotFound
	}
	applyFields(doc, fields, m.now())
	return nil
}

func (m *Memory) Merge(ctx context.Context, path string, fields Document) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		doc = make(Document)
		m.docs[path] = doc
	}
	applyFields(doc, fields, m.now())
	return nil
}

func (m *Memory) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Snapshot
	for path, doc := range m.docs {
		collection, id, err := SplitPath(path)
		if err != nil || collection != q.Collection {
			continue
		}
		if !matches(doc, q.Filters) {
			continue
		}
		out = append(out, Snapshot{Path: path, ID: id, Data: copyDoc(doc)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compareValues(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		// Tie-break on path so query results are deterministic.
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func (m *Memory) Batch() WriteBatch {
	return &memoryBatch{store: m}
}

type memoryBatch struct {
	store *Memory
	sets  []Snapshot
}

func (b *memoryBatch) Set(path string, doc Document) {
	b.sets = append(b.sets, Snapshot{Path: path, Data: doc})
}

// Commit applies every staged write under one lock. All paths are validated
// before anything is touched, so a bad write leaves the store unchanged.
func (b *memoryBatch) Commit(ctx context.Context) error {
	for _, w := range b.sets {
		if _, _, err := SplitPath(w.Path); err != nil {
			return fmt.Errorf("batch write %q: %w", w.Path, err)
		}
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	now := b.store.now()
	for _, w := range b.sets {
		fresh := make(Document, len(w.Data))
		applyFields(fresh, w.Data, now)
		b.store.docs[w.Path] = fresh
	}
	return nil
}

// applyFields resolves field operations against dst in place.
func applyFields(dst Document, fields Document, now time.Time) {
	for k, v := range fields {
		switch op := v.(type) {
		case serverTimestamp:
			dst[k] = now
		case arrayUnion:
			arr, _ := dst[k].([]any)
			for _, val := range op.values {
				if !containsValue(arr, val) {
					arr = append(arr, val)
				}
			}
			dst[k] = arr
		case arrayRemove:
			arr, _ := dst[k].([]any)
			kept := make([]any, 0, len(arr))
			for _, existing := range arr {
				if !containsValue(op.values, existing) {
					kept = append(kept, existing)
				}
			}
			dst[k] = kept
		default:
			dst[k] = copyValue(v)
		}
	}
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := doc[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func containsValue(arr []any, v any) bool {
	for _, existing := range arr {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}

// compareValues orders two field values. Times order chronologically, numbers
// numerically, strings lexicographically. A missing value sorts first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if at, aok := asTime(a); aok {
		if bt, bok := asTime(b); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	if af, aok := asNumber(a); aok {
		if bf, bok := asNumber(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as := fmt.Sprint(a)
	bs := fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func copyDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case Document:
		return copyDoc(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
