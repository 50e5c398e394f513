package reconcile

import (
	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
)

// Normalize fills in missing and derived fields on a submission record in
// place so downstream code can assume a canonical shape. It is the single
// normalization boundary between raw store output and the rest of the
// engine, and the last line of defense before data reaches the UI: it never
// fails, whatever the input looks like.
//
// The guest count is never taken at face value: it is always recomputed
// from the adult and child counts. A child-only party still needs exactly
// one adult contact displayed, but that contact is not double-counted as a
// guest, so its guest count equals the child count alone.
func Normalize(s *model.SubmissionRecord) {
	if s == nil {
		return
	}
	if s.Attending == "" {
		s.Attending = model.AttendingYes
	}
	if s.AdultGuests == nil {
		s.AdultGuests = []string{}
	}
	if s.ChildGuests == nil {
		s.ChildGuests = []string{}
	}
	if s.ChildCount == 0 {
		s.ChildCount = len(s.ChildGuests)
	}
	if s.ChildCount < 0 {
		s.ChildCount = 0
	}
	if s.AdultCount == 0 {
		s.AdultCount = len(s.AdultGuests)
	}
	// A zero adult count with no children on record means the field was
	// never filled in, so assume the responding guest themselves.
	if s.AdultCount == 0 && s.ChildCount == 0 {
		if s.Attending == model.AttendingYes {
			s.AdultCount = 1
		}
	}
	if s.AdultCount < 0 {
		s.AdultCount = 0
	}
	if s.AdultCount == 0 && s.ChildCount > 0 {
		s.GuestCount = s.ChildCount
	} else {
		s.GuestCount = s.AdultCount + s.ChildCount
	}
}

// decodeSubmission turns a raw store document into a normalized submission.
// Decode failures do not abort the lookup: the record keeps its store id
// and gets defaults for everything else. The store id also backfills a
// missing id field, since the two are maintained independently.
func decodeSubmission(d docstore.Document) *model.SubmissionRecord {
	var s model.SubmissionRecord
	_ = d.Decode(&s)
	if s.ID == "" {
		s.ID = d.ID
	}
	s.Kind = model.KindStored
	Normalize(&s)
	return &s
}
