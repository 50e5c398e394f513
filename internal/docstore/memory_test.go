package docstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "roster", "r1", map[string]any{"name": "Sam Lee"}))

	doc, err := s.GetByID(ctx, "roster", "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", doc.ID)

	_, err = s.GetByID(ctx, "roster", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryQueryFilter(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "roster", "r1", map[string]any{"name": "Sam Lee", "category": "family"}))
	require.NoError(t, s.Set(ctx, "roster", "r2", map[string]any{"name": "Pat Kim", "category": "work"}))
	require.NoError(t, s.Set(ctx, "roster", "r3", map[string]any{"name": "Noa Levi", "category": "family"}))

	docs, err := s.Query(ctx, "roster", &Filter{Field: "category", Value: "family"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "r1", docs[0].ID, "results come back in id order")
	assert.Equal(t, "r3", docs[1].ID)

	all, err := s.Query(ctx, "roster", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.Query(ctx, "roster", &Filter{Field: "category", Value: "nope"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryUpdateMergesFields(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "roster", "r1", map[string]any{"name": "Sam Lee", "hasResponded": false}))
	require.NoError(t, s.Update(ctx, "roster", "r1", map[string]any{"hasResponded": true}))

	doc, err := s.GetByID(ctx, "roster", "r1")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, "Sam Lee", got["name"], "untouched fields survive an update")
	assert.Equal(t, true, got["hasResponded"])
}

func TestMemoryBatchWriteBound(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	ops := make([]WriteOp, MaxBatchOps+1)
	for i := range ops {
		ops[i] = WriteOp{Op: OpSet, ID: fmt.Sprintf("d%d", i), Fields: map[string]any{"n": i}}
	}
	assert.ErrorIs(t, s.BatchWrite(ctx, "roster", ops), ErrBatchTooLarge)
	require.NoError(t, s.BatchWrite(ctx, "roster", ops[:MaxBatchOps]))

	docs, err := s.Query(ctx, "roster", nil)
	require.NoError(t, err)
	assert.Len(t, docs, MaxBatchOps)
}

func TestMemoryBatchWriteOps(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.BatchWrite(ctx, "roster", []WriteOp{
		{Op: OpSet, ID: "r1", Fields: map[string]any{"name": "Sam Lee", "category": "family"}},
		{Op: OpSet, ID: "r2", Fields: map[string]any{"name": "Pat Kim"}},
	}))
	require.NoError(t, s.BatchWrite(ctx, "roster", []WriteOp{
		{Op: OpUpdate, ID: "r1", Fields: map[string]any{"category": "work"}},
		{Op: OpDelete, ID: "r2"},
	}))

	doc, err := s.GetByID(ctx, "roster", "r1")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, "work", got["category"])
	assert.Equal(t, "Sam Lee", got["name"])

	_, err = s.GetByID(ctx, "roster", "r2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFailReads(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "submissions", "s1", map[string]any{"name": "x"}))

	s.FailReads("submissions", ErrPermissionDenied)

	_, err := s.GetByID(ctx, "submissions", "s1")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = s.Query(ctx, "submissions", nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Other collections and writes are unaffected; clearing restores reads.
	_, err = s.Query(ctx, "roster", nil)
	assert.NoError(t, err)
	require.NoError(t, s.Set(ctx, "submissions", "s2", map[string]any{"name": "y"}))

	s.FailReads("submissions", nil)
	docs, err := s.Query(ctx, "submissions", nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
