package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryDoc struct {
	data Record
	seq  int
}

type memoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryDoc
	nextSeq     int
}

// NewMemory creates an in-memory Store with the same semantics as the
// Postgres adapter. Used by tests and as a dependency-free fallback.
func NewMemory() Store {
	return &memoryStore{
		collections: make(map[string]map[string]*memoryDoc),
	}
}

func (s *memoryStore) Get(ctx context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneRecord(doc.data), nil
}

func (s *memoryStore) Set(ctx context.Context, collection, id string, data Record, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	if docs == nil {
		docs = make(map[string]*memoryDoc)
		s.collections[collection] = docs
	}

	existing, ok := docs[id]
	if ok && merge {
		for k, v := range cloneRecord(data) {
			existing.data[k] = v
		}
		return nil
	}

	s.nextSeq++
	docs[id] = &memoryDoc{data: cloneRecord(data), seq: s.nextSeq}
	return nil
}

func (s *memoryStore) Update(ctx context.Context, collection, id string, partial Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}

	for k, v := range cloneRecord(partial) {
		doc.data[k] = v
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}

	delete(s.collections[collection], id)
	return nil
}

func (s *memoryStore) Add(ctx context.Context, collection string, data Record) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *memoryStore) QueryCollection(ctx context.Context, collection string, q Query) ([]Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type match struct {
		doc Doc
		seq int
	}

	matches := []match{}
	for id, doc := range s.collections[collection] {
		if matchesFilters(doc.data, q.Where) {
			matches = append(matches, match{doc: Doc{ID: id, Data: cloneRecord(doc.data)}, seq: doc.seq})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if q.OrderBy != nil {
			a := fieldString(matches[i].doc.Data, q.OrderBy.Field)
			b := fieldString(matches[j].doc.Data, q.OrderBy.Field)
			if a != b {
				if q.OrderBy.Desc {
					return a > b
				}
				return a < b
			}
		}
		return matches[i].seq < matches[j].seq
	})

	docs := []Doc{}
	for _, m := range matches {
		docs = append(docs, m.doc)
		if q.Limit > 0 && len(docs) >= q.Limit {
			break
		}
	}

	return docs, nil
}

func (s *memoryStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.collections[collection]), nil
}

// cloneRecord deep-copies a record through its JSON form, normalizing typed
// values (time.Time, numbers) the same way the jsonb adapter stores them.
func cloneRecord(rec Record) Record {
	raw, err := json.Marshal(rec)
	if err != nil {
		return Record{}
	}

	clone := Record{}
	if err := json.Unmarshal(raw, &clone); err != nil {
		return Record{}
	}

	return clone
}

func matchesFilters(data Record, filters []Filter) bool {
	for _, f := range filters {
		got, ok := data[f.Field]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(normalizeValue(got), normalizeValue(f.Value)) {
			return false
		}
	}
	return true
}

func normalizeValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}

	return out
}

func fieldString(data Record, field string) string {
	v, ok := data[field]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
