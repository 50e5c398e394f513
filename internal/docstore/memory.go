package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory is a map-backed Store used by tests and local development. It
// implements the same contract as the MySQL store, including the bounded
// batch size and the error taxonomy, and additionally lets tests force a
// read failure per collection to exercise the degraded paths.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	readErr     map[string]error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]json.RawMessage),
		readErr:     make(map[string]error),
	}
}

// FailReads makes every subsequent read of the collection return err.
// Pass nil to clear. Writes are unaffected.
func (m *Memory) FailReads(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.readErr, collection)
		return
	}
	m.readErr[collection] = err
}

func (m *Memory) coll(collection string) map[string]json.RawMessage {
	c, ok := m.collections[collection]
	if !ok {
		c = make(map[string]json.RawMessage)
		m.collections[collection] = c
	}
	return c
}

// GetByID returns the document with the given id or ErrNotFound.
func (m *Memory) GetByID(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.readErr[collection]; err != nil {
		return Document{}, err
	}
	raw, ok := m.collections[collection][id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return Document{ID: id, Data: raw}, nil
}

// Query returns documents matching the optional single-field equality
// filter, ordered by id for deterministic output.
func (m *Memory) Query(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.readErr[collection]; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m.collections[collection]))
	for id := range m.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Document
	for _, id := range ids {
		raw := m.collections[collection][id]
		if filter != nil && !fieldEquals(raw, filter.Field, filter.Value) {
			continue
		}
		out = append(out, Document{ID: id, Data: raw})
	}
	return out, nil
}

// fieldEquals decodes the document far enough to compare one top-level
// field as a string.
func fieldEquals(raw json.RawMessage, field, value string) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	fv, ok := doc[field]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(fv, &s); err == nil {
		return s == value
	}
	return string(fv) == value
}

// BatchWrite applies up to MaxBatchOps operations atomically with respect to
// other calls on this store.
func (m *Memory) BatchWrite(ctx context.Context, collection string, ops []WriteOp) error {
	if len(ops) > MaxBatchOps {
		return fmt.Errorf("%d ops: %w", len(ops), ErrBatchTooLarge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	for _, op := range ops {
		switch op.Op {
		case OpSet:
			raw, err := json.Marshal(op.Fields)
			if err != nil {
				return fmt.Errorf("marshal %s/%s: %w", collection, op.ID, err)
			}
			c[op.ID] = raw
		case OpUpdate:
			if err := mergeFields(c, op.ID, op.Fields); err != nil {
				return fmt.Errorf("update %s/%s: %w", collection, op.ID, err)
			}
		case OpDelete:
			delete(c, op.ID)
		default:
			return fmt.Errorf("unknown op %q", op.Op)
		}
	}
	return nil
}

func mergeFields(c map[string]json.RawMessage, id string, fields map[string]any) error {
	doc := make(map[string]json.RawMessage)
	if existing, ok := c[id]; ok {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return err
		}
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		doc[k] = raw
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	c[id] = raw
	return nil
}

// Set stores doc under id, replacing any previous version.
func (m *Memory) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coll(collection)[id] = raw
	return nil
}

// Update replaces the given top-level fields on an existing document, or
// creates the document when it does not exist yet.
func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return mergeFields(m.coll(collection), id, fields)
}

// Delete removes the document. Deleting a missing document is not an error.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.coll(collection), id)
	return nil
}

var _ Store = (*Memory)(nil)
