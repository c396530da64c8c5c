package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Record is the schemaless body of a stored document
type Record map[string]any

// Doc is a document returned from a query, with its identity attached
type Doc struct {
	ID   string
	Data Record
}

// Filter is an equality constraint on a single document field
type Filter struct {
	Field string
	Value any
}

// OrderBy sorts query results by a document field
type OrderBy struct {
	Field string
	Desc  bool
}

// Query describes a collection read: equality filters, an optional sort,
// and an optional result limit
type Query struct {
	Where   []Filter
	OrderBy *OrderBy
	Limit   int
}

// Store defines the interface for document data access. All persistent state
// lives behind this interface; the application holds only transient copies.
type Store interface {
	// Get retrieves a single document, or ErrNotFound
	Get(ctx context.Context, collection, id string) (Record, error)

	// Set writes a document under a known id. With merge, existing fields
	// not named in data are preserved; without, the document is replaced.
	Set(ctx context.Context, collection, id string, data Record, merge bool) error

	// Update applies a partial update to an existing document, or ErrNotFound
	Update(ctx context.Context, collection, id string, partial Record) error

	// Delete removes a document, or ErrNotFound
	Delete(ctx context.Context, collection, id string) error

	// Add stores a document under a fresh id and returns the id
	Add(ctx context.Context, collection string, data Record) (string, error)

	// QueryCollection returns the documents matching q
	QueryCollection(ctx context.Context, collection string, q Query) ([]Doc, error)

	// Count returns the number of documents in a collection. A collection
	// that was never written to counts as zero.
	Count(ctx context.Context, collection string) (int, error)
}

// Encode converts a typed value into a Record via its JSON form
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	return rec, nil
}

// Decode converts a Record into a typed value via its JSON form
func Decode(rec Record, v any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}

	return nil
}
