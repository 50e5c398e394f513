package reconcile

import (
	"strings"

	"github.com/gatherly/guestlist/internal/model"
)

// normalizeKey trims and lower-cases a join key. Both indexes and lookups
// go through this so the two free-text sources agree on casing and
// accidental whitespace.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Indexes holds the three lookup maps used to connect roster entries to
// submissions without re-querying the store per entry. They are built once
// per batch pass, or ad hoc for a single interactive lookup.
//
// When several submissions share a key the latest one wins the slot; for
// the name index the collision count is kept so a name-tier resolution can
// be flagged as ambiguous.
type Indexes struct {
	byEmail  map[string]*model.SubmissionRecord
	byID     map[string]*model.SubmissionRecord
	byName   map[string]*model.SubmissionRecord
	nameHits map[string]int
}

// BuildIndexes constructs the lookup maps from a full submission snapshot.
func BuildIndexes(subs []*model.SubmissionRecord) *Indexes {
	ix := &Indexes{
		byEmail:  make(map[string]*model.SubmissionRecord, len(subs)),
		byID:     make(map[string]*model.SubmissionRecord, len(subs)),
		byName:   make(map[string]*model.SubmissionRecord, len(subs)),
		nameHits: make(map[string]int),
	}
	for _, s := range subs {
		if s == nil {
			continue
		}
		if key := normalizeKey(s.Email); key != "" {
			ix.byEmail[key] = LatestSubmission([]*model.SubmissionRecord{ix.byEmail[key], s})
		}
		if s.ID != "" {
			ix.byID[s.ID] = LatestSubmission([]*model.SubmissionRecord{ix.byID[s.ID], s})
		}
		if key := normalizeKey(s.Name); key != "" {
			ix.nameHits[key]++
			ix.byName[key] = LatestSubmission([]*model.SubmissionRecord{ix.byName[key], s})
		}
	}
	return ix
}

// Resolve finds the best-matching submission for a roster entry using the
// three-tier strategy: exact case-insensitive email match, then stored
// identifier match, then case-insensitive name match. Email and store id
// are asserted unique by the upstream systems; the display name is free
// text entered independently by the organizer and the guest, so it is the
// least reliable join key and comes last.
//
// The returned method names the tier that matched (MatchNone when nothing
// did). ambiguous is true only for a name-tier hit where the index recorded
// more than one submission under that key; the caller must surface this
// rather than silently accepting the best guess.
func (ix *Indexes) Resolve(entry *model.RosterEntry) (sub *model.SubmissionRecord, method model.MatchMethod, ambiguous bool) {
	if entry == nil {
		return nil, model.MatchNone, false
	}
	if key := normalizeKey(entry.Email); key != "" {
		if s, ok := ix.byEmail[key]; ok {
			return s, model.MatchEmail, false
		}
	}
	if entry.ID != "" {
		if s, ok := ix.byID[entry.ID]; ok {
			return s, model.MatchID, false
		}
	}
	if key := normalizeKey(entry.Name); key != "" {
		if s, ok := ix.byName[key]; ok {
			return s, model.MatchName, ix.nameHits[key] > 1
		}
	}
	return nil, model.MatchNone, false
}
