package docstore

import (
	"context"
	"errors"
	"strings"
)

// Document is the raw field map stored at a path. Values are plain JSON-ish
// types: string, bool, float64/int64, time.Time, []any and nested Documents.
type Document = map[string]any

var (
	ErrNotFound    = errors.New("docstore: not found")
	ErrInvalidPath = errors.New("docstore: invalid path")
	ErrClosed      = errors.New("docstore: closed")
)

// serverTimestamp is a sentinel resolved by the store at commit time.
type serverTimestamp struct{}

// ServerTimestamp marks a field to be filled with the store's clock on write.
var ServerTimestamp = serverTimestamp{}

// arrayUnion appends values that are not already present in an array field.
type arrayUnion struct{ values []any }

// arrayRemove deletes every occurrence of the given values from an array field.
type arrayRemove struct{ values []any }

// ArrayUnion builds an atomic add-to-set operation for Update/Merge.
func ArrayUnion(values ...any) any { return arrayUnion{values: values} }

// ArrayRemove builds an atomic remove-from-set operation for Update/Merge.
func ArrayRemove(values ...any) any { return arrayRemove{values: values} }

// Filter is an equality constraint on a document field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents from one collection with optional equality filters
// and a single order-by field.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
}

// Snapshot is one query or get result: the document plus its addressing.
type Snapshot struct {
	Path string
	ID   string
	Data Document
}

// WriteBatch stages document writes that commit atomically: either every
// staged write becomes visible or none does.
type WriteBatch interface {
	Set(path string, doc Document)
	Commit(ctx context.Context) error
}

// Store is the document database the social services run on. Paths address
// documents as collection/id pairs, possibly nested
// (users/{id}, connections/{owner}/peers/{peer}).
type Store interface {
	// Get returns the document at path or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)
	// Set creates or fully replaces the document at path.
	Set(ctx context.Context, path string, doc Document) error
	// Update applies field changes (plain values, ArrayUnion, ArrayRemove,
	// ServerTimestamp) to an existing document. ErrNotFound if absent.
	Update(ctx context.Context, path string, fields Document) error
	// Merge is Update with create-if-missing semantics.
	Merge(ctx context.Context, path string, fields Document) error
	// Query returns matching documents from a collection.
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	// Batch starts an atomic multi-document write.
	Batch() WriteBatch
}

// SplitPath validates a document path and returns its collection prefix and
// document id. A valid path has an even, non-zero number of segments.
func SplitPath(path string) (collection, id string, err error) {
	if path == "" {
		return "", "", ErrInvalidPath
	}
	seg := strings.Split(path, "/")
	if len(seg) == 0 || len(seg)%2 != 0 {
		return "", "", ErrInvalidPath
	}
	for _, s := range seg {
		if s == "" {
			return "", "", ErrInvalidPath
		}
	}
	return strings.Join(seg[:len(seg)-1], "/"), seg[len(seg)-1], nil
}
