package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a goroutine-safe DocumentStore backed by maps. Documents
// are kept as JSON so reads never alias caller memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]*jsonDocument
}

// Ensure MemoryStore implements DocumentStore.
var _ DocumentStore = (*MemoryStore)(nil)

// NewMemory creates an empty in-memory document store.
func NewMemory() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]*jsonDocument)}
}

// Backend returns "memory".
func (s *MemoryStore) Backend() string { return "memory" }

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Insert stores doc and returns its new id.
func (s *MemoryStore) Insert(_ context.Context, collection string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := NewID()
	s.collections[collection] = append(s.collections[collection], &jsonDocument{id: id, body: body})
	return id, nil
}

// FindOne returns the earliest-inserted document matching filter.
func (s *MemoryStore) FindOne(_ context.Context, collection string, filter Filter) (Document, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			return *doc, nil
		}
	}
	return nil, ErrNotFound
}

// FindMany returns the documents matching filter in insertion order.
func (s *MemoryStore) FindMany(_ context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []Document{}
	for _, doc := range s.collections[collection] {
		if opts.Limit > 0 && len(docs) >= opts.Limit {
			break
		}
		ok, err := matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

// UpdateOne replaces the given top-level fields of the first match.
func (s *MemoryStore) UpdateOne(_ context.Context, collection string, filter Filter, fields Fields) error {
	if err := checkFilter(filter); err != nil {
		return err
	}
	if err := checkFields(fields); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, filter)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		var body map[string]json.RawMessage
		if err := json.Unmarshal(doc.body, &body); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		for k, v := range fields {
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode field %s: %w", k, err)
			}
			body[k] = encoded
		}
		updated, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		doc.body = updated
		return nil
	}
	return ErrNotFound
}

// Collections lists the non-empty collections.
func (s *MemoryStore) Collections(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := []string{}
	for name, docs := range s.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// matches compares each filter value, JSON-encoded, with the raw field.
func matches(doc *jsonDocument, filter Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(doc.body, &body); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}

	for k, v := range filter {
		if k == SearchKey {
			if !containsAny(body, v.(AnyContains)) {
				return false, nil
			}
			continue
		}
		if k == IDField {
			if id, ok := v.(string); !ok || id != doc.id {
				return false, nil
			}
			continue
		}
		want, err := json.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("encode filter %s: %w", k, err)
		}
		if got, ok := body[k]; !ok || !bytes.Equal(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// containsAny reports whether any of the search fields is a string holding
// the search text, ignoring case.
func containsAny(body map[string]json.RawMessage, search AnyContains) bool {
	text := strings.ToLower(search.Text)
	for _, f := range search.Fields {
		var value string
		if err := json.Unmarshal(body[f], &value); err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(value), text) {
			return true
		}
	}
	return false
}
