// Package docstore error sentinels. Handlers and the reconciliation
// orchestrator branch on these with errors.Is; in particular
// ErrPermissionDenied is the one failure kind the orchestrator recovers
// from locally instead of propagating.
package docstore

import "errors"

// ErrNotFound is returned by GetByID when no document with the requested id
// exists in the collection.
var ErrNotFound = errors.New("document not found")

// ErrPermissionDenied is returned when the backing store refuses access.
// The reconciliation orchestrator treats this as a recoverable condition
// and synthesizes a fallback submission when roster evidence allows it.
var ErrPermissionDenied = errors.New("permission denied")

// ErrBatchTooLarge is returned by BatchWrite when the operation count
// exceeds MaxBatchOps.
var ErrBatchTooLarge = errors.New("batch exceeds maximum operation count")
