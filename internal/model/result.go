package model

// MatchMethod is the join-key tier that connected a roster entry to a
// submission, ordered by reliability. Email and store id are asserted
// unique by the upstream systems; name is free text entered independently
// by two different actors and is the last resort.
type MatchMethod string

const (
	MatchEmail MatchMethod = "email"
	MatchID    MatchMethod = "id"
	MatchName  MatchMethod = "name"
	MatchNone  MatchMethod = "none"
)

// ReconciliationResult combines a roster entry with its resolved submission
// for one lookup. It is ephemeral: returned to the caller per lookup or per
// batch item, never persisted.
type ReconciliationResult struct {
	Roster      *RosterEntry      `json:"roster"`
	Submission  *SubmissionRecord `json:"submission,omitempty"`
	MatchMethod MatchMethod       `json:"matchMethod"`
	Conflicts   []string          `json:"conflicts,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// HasExisting reports whether the caller should present "update existing
// RSVP" semantics. A synthesized record flagged isNewFallback is a
// best-effort default rather than evidence of a prior response, so it still
// counts as new.
func (r *ReconciliationResult) HasExisting() bool {
	return r.Submission != nil && !r.Submission.IsNewFallback
}
