// Package store provides document persistence interfaces and implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	CollectionProblems = "problem"
	CollectionSessions = "session"
	CollectionMessages = "message"
)

// IDField addresses the document id in a Filter.
const IDField = "id"

// ErrNotFound is returned when no document matches a filter.
var ErrNotFound = errors.New("document not found")

// ErrInvalidField is returned for filter or update keys that are not plain
// lower-case identifiers.
var ErrInvalidField = errors.New("invalid field name")

var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Filter matches documents whose top-level fields equal the given values.
// The SearchKey entry, when present, holds an AnyContains condition.
type Filter map[string]any

// SearchKey is the Filter key for a text search condition.
const SearchKey = "$search"

// AnyContains matches documents where at least one of the string Fields
// contains Text, ignoring case. Text is a literal, not a pattern.
type AnyContains struct {
	Fields []string
	Text   string
}

// ByID returns a filter matching a single document id.
func ByID(id string) Filter {
	return Filter{IDField: id}
}

// Fields is a partial update: each top-level field is replaced wholesale.
type Fields map[string]any

// FindOptions tunes FindMany. Results are always in insertion order.
type FindOptions struct {
	// Limit caps the number of documents returned; zero means no limit.
	Limit int
}

// Document is a stored document as returned by a query.
type Document interface {
	// ID returns the document's opaque id.
	ID() string

	// Decode unmarshals the document body into v.
	Decode(v any) error
}

// DocumentStore defines the persistence operations the services rely on.
type DocumentStore interface {
	// Insert stores doc in collection and returns its new id.
	Insert(ctx context.Context, collection string, doc any) (string, error)

	// FindOne returns the first document matching filter, or ErrNotFound.
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)

	// FindMany returns all documents matching filter in insertion order.
	FindMany(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error)

	// UpdateOne replaces the given top-level fields of the first document
	// matching filter. Returns ErrNotFound if nothing matched.
	UpdateOne(ctx context.Context, collection string, filter Filter, fields Fields) error

	// Collections lists the collections holding at least one document.
	Collections(ctx context.Context) ([]string, error)

	// Backend names the storage engine, for diagnostics.
	Backend() string

	// Ping verifies connectivity and returns an error if the store is unreachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// NewID returns a fresh 24-hex-character object id.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id is a well-formed object id.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func checkFields(fields Fields) error {
	for k := range fields {
		if !fieldPattern.MatchString(k) {
			return ErrInvalidField
		}
	}
	return nil
}

func checkFilter(filter Filter) error {
	for k, v := range filter {
		if k != SearchKey {
			if !fieldPattern.MatchString(k) {
				return ErrInvalidField
			}
			continue
		}
		search, ok := v.(AnyContains)
		if !ok || len(search.Fields) == 0 {
			return ErrInvalidField
		}
		for _, f := range search.Fields {
			if !fieldPattern.MatchString(f) {
				return ErrInvalidField
			}
		}
	}
	return nil
}

// jsonDocument is a document held as encoded JSON.
type jsonDocument struct {
	id   string
	body []byte
}

func (d jsonDocument) ID() string { return d.id }

func (d jsonDocument) Decode(v any) error {
	return json.Unmarshal(d.body, v)
}
