package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
)

func subAt(id string, t time.Time) *model.SubmissionRecord {
	return &model.SubmissionRecord{ID: id, SubmittedAt: docstore.NewTimestamp(t)}
}

func TestLatestSubmissionPicksNewest(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)

	got := LatestSubmission([]*model.SubmissionRecord{subAt("a", t1), subAt("b", t2)})
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)

	// Order of candidates must not matter.
	got = LatestSubmission([]*model.SubmissionRecord{subAt("b", t2), subAt("a", t1)})
	assert.Equal(t, "b", got.ID)
}

func TestLatestSubmissionMalformedLoses(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	missing := &model.SubmissionRecord{ID: "missing"}

	got := LatestSubmission([]*model.SubmissionRecord{missing, subAt("valid", t1)})
	require.NotNil(t, got)
	assert.Equal(t, "valid", got.ID, "a record without a usable timestamp loses")
}

func TestLatestSubmissionBothMalformedKeepsFirstSeen(t *testing.T) {
	a := &model.SubmissionRecord{ID: "first"}
	b := &model.SubmissionRecord{ID: "second"}

	got := LatestSubmission([]*model.SubmissionRecord{a, b})
	require.NotNil(t, got)
	assert.Equal(t, "first", got.ID)
}

func TestLatestSubmissionSingleMalformedStillReturned(t *testing.T) {
	only := &model.SubmissionRecord{ID: "only"}
	got := LatestSubmission([]*model.SubmissionRecord{only})
	require.NotNil(t, got)
	assert.Equal(t, "only", got.ID)
}

func TestLatestSubmissionEmptyAndNils(t *testing.T) {
	assert.Nil(t, LatestSubmission(nil))
	assert.Nil(t, LatestSubmission([]*model.SubmissionRecord{nil, nil}))
}
