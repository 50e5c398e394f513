// Package repository persists organizer accounts and refresh tokens. It
// also defines sentinel errors shared across repositories so handlers can
// translate failure modes into HTTP responses without inspecting SQL
// errors directly.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation their
// role does not permit, such as a STAFF account hitting an organizer-only
// maintenance endpoint. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// existing state, such as registering an email that already has an
// account. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
