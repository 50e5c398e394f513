// Package docstore defines the document-store client used by the rest of the
// application. Roster entries and RSVP submissions live in two independently
// writable collections with no foreign-key guarantee between them, so the
// store exposes only generic document operations: get by id, query with an
// optional single-field equality filter, and bounded batch writes.
package docstore

import (
	"context"
	"encoding/json"
)

// MaxBatchOps is the maximum number of operations accepted by a single
// BatchWrite call. Larger batches are rejected with ErrBatchTooLarge and
// callers are expected to chunk.
const MaxBatchOps = 500

// Well-known collection names.
const (
	CollectionRoster      = "roster"
	CollectionSubmissions = "submissions"
)

// Document is a single stored record: its store-assigned id plus the raw
// JSON body. Callers decode Data into their own types.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Filter restricts a Query to documents whose named top-level field equals
// the given value. Only string equality is supported; that is all the
// application needs (email, name and id lookups).
type Filter struct {
	Field string
	Value string
}

// Op enumerates the write operation kinds accepted by BatchWrite.
type Op string

const (
	OpSet    Op = "set"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// WriteOp is one entry in a batch write. Fields is ignored for OpDelete.
// For OpUpdate only the provided top-level fields are replaced; the rest of
// the document is left untouched.
type WriteOp struct {
	Op     Op
	ID     string
	Fields map[string]any
}

// Store is the document-store client consumed by the reconciliation engine
// and the HTTP handlers. Implementations must return ErrNotFound from
// GetByID when the document does not exist and ErrPermissionDenied when the
// backend refuses read access; any other backend error passes through
// unchanged so the surrounding collaborator can apply its own retry policy.
type Store interface {
	GetByID(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, filter *Filter) ([]Document, error)
	BatchWrite(ctx context.Context, collection string, ops []WriteOp) error
	Set(ctx context.Context, collection, id string, doc any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}
