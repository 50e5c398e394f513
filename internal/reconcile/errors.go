// Package reconcile implements the guest/submission reconciliation engine:
// resolving which roster entry a lookup refers to, deciding whether that
// party already has an RSVP on file, merging the two independently writable
// collections, flagging disagreements between them, and synthesizing a
// stand-in submission when the submission store cannot be read.
package reconcile

import "errors"

// ErrGuestNotFound is returned when the looked-up name matches no roster
// entry. Fatal to the lookup; handlers surface it as "guest not in list".
var ErrGuestNotFound = errors.New("guest not in list")

// ErrAmbiguousMatch marks a name-tier match where more than one submission
// shared the normalized name. It is attached to the result as a warning,
// never returned as a failure: the engine still answers with its best guess
// (latest by timestamp) so an operator can audit it later.
var ErrAmbiguousMatch = errors.New("multiple submissions match this name")

// ErrUnverifiedResponse marks a lookup where the submission store denied
// access and the roster held no hint of a prior response. The caller may
// proceed as a new submission.
var ErrUnverifiedResponse = errors.New("could not verify prior response")

// ErrLookupSuperseded is returned when a newer lookup started while this
// one was in flight. Last request wins; the stale result must be dropped.
var ErrLookupSuperseded = errors.New("lookup superseded by a newer request")
