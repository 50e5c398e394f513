package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/guestlist/internal/model"
)

func TestDetectConflictsNoneWhenAgreeing(t *testing.T) {
	roster := &model.RosterEntry{
		ID: "r1", Name: "Sam Lee",
		Email: "sam@x.com", Phone: "555-0101",
		HasResponded: true, Response: model.ResponseAttending,
	}
	sub := &model.SubmissionRecord{
		Name: "Sam Lee", Email: "SAM@x.com", Phone: "555-0101",
		Attending: model.AttendingYes,
	}

	assert.Empty(t, DetectConflicts(roster, sub))
}

func TestDetectConflictsReportsEachDisagreement(t *testing.T) {
	roster := &model.RosterEntry{
		ID: "r1", Name: "Sam Lee",
		Email: "sam@x.com", Phone: "555-0101",
		HasResponded: true, Response: model.ResponseDeclined,
	}
	sub := &model.SubmissionRecord{
		Name: "Sam Lee", Email: "sam@other.com", Phone: "555-9999",
		Attending: model.AttendingYes,
	}

	conflicts := DetectConflicts(roster, sub)
	require.Len(t, conflicts, 3, "checks are independent, not short-circuiting")
	assert.Contains(t, conflicts[0], "email differs")
	assert.Contains(t, conflicts[1], "phone differs")
	assert.Contains(t, conflicts[2], "attendance differs")
}

func TestDetectConflictsEmptySidesIgnored(t *testing.T) {
	roster := &model.RosterEntry{ID: "r1", Name: "Sam Lee", Email: "", Phone: ""}
	sub := &model.SubmissionRecord{Name: "Sam Lee", Email: "sam@x.com", Phone: "555-0101"}

	assert.Empty(t, DetectConflicts(roster, sub),
		"a blank roster side is missing data, not a disagreement")
}

func TestDetectConflictsNoAttendanceCheckBeforeResponse(t *testing.T) {
	roster := &model.RosterEntry{ID: "r1", Name: "Sam Lee", HasResponded: false}
	sub := &model.SubmissionRecord{Name: "Sam Lee", Attending: model.AttendingNo}

	assert.Empty(t, DetectConflicts(roster, sub))
}

func TestDetectConflictsNilSafe(t *testing.T) {
	assert.Nil(t, DetectConflicts(nil, &model.SubmissionRecord{}))
	assert.Nil(t, DetectConflicts(&model.RosterEntry{}, nil))
}
