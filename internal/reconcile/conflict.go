package reconcile

import (
	"fmt"
	"strings"

	"github.com/gatherly/guestlist/internal/model"
)

// DetectConflicts compares a roster entry against its resolved submission
// and reports field-level disagreements. All checks run independently; the
// list is empty when the two records agree. Conflicts are advisory: they
// are returned for operator visibility and never block the merge, since the
// submission is authoritative for attendance once a match is found.
func DetectConflicts(roster *model.RosterEntry, sub *model.SubmissionRecord) []string {
	if roster == nil || sub == nil {
		return nil
	}
	var conflicts []string

	re := strings.TrimSpace(roster.Email)
	se := strings.TrimSpace(sub.Email)
	if re != "" && se != "" && !strings.EqualFold(re, se) {
		conflicts = append(conflicts,
			fmt.Sprintf("email differs: roster %q vs submission %q", re, se))
	}

	rp := strings.TrimSpace(roster.Phone)
	sp := strings.TrimSpace(sub.Phone)
	if rp != "" && sp != "" && rp != sp {
		conflicts = append(conflicts,
			fmt.Sprintf("phone differs: roster %q vs submission %q", rp, sp))
	}

	if roster.HasResponded && roster.Response != "" {
		cached := roster.Response == model.ResponseAttending
		submitted := sub.Attending == model.AttendingYes
		if cached != submitted {
			conflicts = append(conflicts,
				fmt.Sprintf("attendance differs: roster cached %q, submission says %q",
					roster.Response, sub.Attending))
		}
	}
	return conflicts
}
