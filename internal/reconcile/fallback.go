package reconcile

import (
	"fmt"
	"time"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
)

// SynthesizeFallback fabricates a submission-shaped record from roster
// fields so a lookup can proceed in degraded mode when the submission store
// denies read access. The record exists only in memory and is never written
// back; Kind marks it as synthesized and the flags carry the same signal
// onto the wire.
//
// When the roster entry never recorded a response (hasResponded false), the
// result is not really a prior response but a best-effort default, flagged
// isNewFallback so the caller offers "submit" rather than "update"
// semantics. The emergency variant is produced by the outer failure handler
// and gets a distinct id prefix for auditability.
func SynthesizeFallback(entry *model.RosterEntry, emergency bool, now time.Time) *model.SubmissionRecord {
	if entry == nil {
		return nil
	}
	id := "fallback-" + entry.ID
	if emergency {
		if entry.ID != "" {
			id = "emergency-fallback-" + entry.ID
		} else {
			id = fmt.Sprintf("emergency-fallback-%d", now.UnixMilli())
		}
	}

	attending := model.AttendingYes
	if entry.Response == model.ResponseDeclined {
		attending = model.AttendingNo
	}

	submittedAt := entry.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = docstore.NewTimestamp(now)
	}

	s := &model.SubmissionRecord{
		ID:                  id,
		Name:                entry.Name,
		Email:               entry.Email,
		Phone:               entry.Phone,
		Attending:           attending,
		AdultGuests:         append([]string{}, entry.AdditionalGuests...),
		AdultCount:          entry.AdultCount,
		ChildCount:          entry.ChildCount,
		SubmittedAt:         submittedAt,
		IsFallback:          true,
		IsNewFallback:       !entry.HasResponded,
		IsEmergencyFallback: emergency,
		Kind:                model.KindSynthesized,
	}
	Normalize(s)
	return s
}
