package model

import "github.com/gatherly/guestlist/internal/docstore"

// Attendance values on a submission.
const (
	AttendingYes = "yes"
	AttendingNo  = "no"
)

// SubmissionKind discriminates real stored submissions from the
// submission-shaped values the engine fabricates when the submission store
// cannot be read. Callers switch on the kind instead of probing boolean
// flags; the flags remain on the wire for the export collaborators.
type SubmissionKind int

const (
	// KindStored is a submission read from the store, written by the
	// RSVP-form collaborator.
	KindStored SubmissionKind = iota
	// KindSynthesized is an in-memory fallback built from roster fields.
	// It is never written back to the store.
	KindSynthesized
)

// SubmissionRecord is one RSVP form post. The submissions collection is
// append-only from the engine's point of view: multiple records may exist
// for the same name (resubmission or operator error) and the engine always
// resolves to a single authoritative one per lookup.
//
// The JSON tags are the persisted contract with the form-submission
// collaborator and must not be renamed.
type SubmissionRecord struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Attending   string             `json:"attending"`
	AdultGuests []string           `json:"adultGuests"`
	ChildGuests []string           `json:"childGuests"`
	AdultCount  int                `json:"adultCount"`
	ChildCount  int                `json:"childCount"`
	GuestCount  int                `json:"guestCount"`
	SubmittedAt docstore.Timestamp `json:"submittedAt,omitempty"`

	// Engine-added markers for synthesized records; never persisted
	// upstream but kept in responses so the UI can label degraded data.
	IsFallback          bool `json:"isFallback,omitempty"`
	IsNewFallback       bool `json:"isNewFallback,omitempty"`
	IsEmergencyFallback bool `json:"isEmergencyFallback,omitempty"`

	Kind SubmissionKind `json:"-"`
}
