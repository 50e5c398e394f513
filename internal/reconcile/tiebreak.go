package reconcile

import "github.com/gatherly/guestlist/internal/model"

// LatestSubmission selects the record with the numerically latest
// submittedAt from a set of submissions matching the same person. Missing
// or malformed timestamps compare as the earliest possible moment, so a
// record without a usable timestamp loses every comparison unless it is the
// only candidate — in which case it is still returned. When no comparison
// can be made at all the first-seen record stays selected: treating a
// returning guest as new is acceptable, crashing the lookup is not.
func LatestSubmission(subs []*model.SubmissionRecord) *model.SubmissionRecord {
	var best *model.SubmissionRecord
	for _, s := range subs {
		if s == nil {
			continue
		}
		if best == nil || s.SubmittedAt.After(best.SubmittedAt) {
			best = s
		}
	}
	return best
}
