package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
	"github.com/gatherly/guestlist/internal/queue"
	"github.com/gatherly/guestlist/internal/reconcile"
)

func newGuestHandler(t *testing.T) (*GuestHandler, *docstore.Memory) {
	t.Helper()
	store := docstore.NewMemory()
	orch := reconcile.NewOrchestrator(store, zerolog.Nop())
	h := NewGuestHandler(orch, store, zerolog.Nop())
	h.publish = func(context.Context, queue.RSVPReceivedEvent) error { return nil }
	return h, store
}

func doLookup(t *testing.T, h *GuestHandler, name string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/guests/lookup?name="+url.QueryEscape(name), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.Lookup(c))
	return rec
}

func TestLookupRequiresName(t *testing.T) {
	h, _ := newGuestHandler(t)
	rec := doLookup(t, h, "  ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLookupUnknownGuest(t *testing.T) {
	h, _ := newGuestHandler(t)
	rec := doLookup(t, h, "Nobody Here")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "guest not in list")
}

func TestLookupResolvesGuest(t *testing.T) {
	h, store := newGuestHandler(t)
	ctx := context.Background()
	t1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Set(ctx, docstore.CollectionRoster, "r1", &model.RosterEntry{
		ID: "r1", Name: "Sam Lee", Email: "sam@x.com",
	}))
	require.NoError(t, store.Set(ctx, docstore.CollectionSubmissions, "s1", &model.SubmissionRecord{
		ID: "s1", Name: "Sam Lee", Email: "sam@x.com",
		Attending: model.AttendingYes, AdultCount: 2,
		SubmittedAt: docstore.NewTimestamp(t1),
	}))

	rec := doLookup(t, h, "sam lee")
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.ReconciliationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, model.MatchEmail, res.MatchMethod)
	require.NotNil(t, res.Submission)
	assert.Equal(t, 2, res.Submission.GuestCount)
}

func doSubmit(t *testing.T, h *GuestHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/rsvp", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.Submit(c))
	return rec
}

func TestSubmitValidation(t *testing.T) {
	h, _ := newGuestHandler(t)

	rec := doSubmit(t, h, `{"email":"x@y.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "name is required")

	rec = doSubmit(t, h, `{"name":"Sam Lee","attending":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitStoresAndRepairsRoster(t *testing.T) {
	h, store := newGuestHandler(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, docstore.CollectionRoster, "r1", &model.RosterEntry{
		ID: "r1", Name: "Sam Lee", Email: "sam@x.com",
	}))

	var published []queue.RSVPReceivedEvent
	h.publish = func(_ context.Context, ev queue.RSVPReceivedEvent) error {
		published = append(published, ev)
		return nil
	}

	rec := doSubmit(t, h, `{"name":"Sam Lee","email":"sam@x.com","attending":"yes","adultGuests":["Sam Lee","Ash Lee"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp rsvpResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Submission)
	assert.True(t, resp.InRoster)
	assert.NotEmpty(t, resp.Submission.ID)
	assert.Equal(t, 2, resp.Submission.GuestCount)

	// The submission was persisted under its new id.
	doc, err := store.GetByID(ctx, docstore.CollectionSubmissions, resp.Submission.ID)
	require.NoError(t, err)
	var stored model.SubmissionRecord
	require.NoError(t, doc.Decode(&stored))
	assert.Equal(t, model.AttendingYes, stored.Attending)

	// The roster entry was repaired in the same request.
	rosterDoc, err := store.GetByID(ctx, docstore.CollectionRoster, "r1")
	require.NoError(t, err)
	var entry model.RosterEntry
	require.NoError(t, rosterDoc.Decode(&entry))
	assert.True(t, entry.HasResponded)
	assert.Equal(t, model.ResponseAttending, entry.Response)
	assert.Equal(t, 2, entry.ActualGuestCount)

	require.Len(t, published, 1)
	assert.Equal(t, resp.Submission.ID, published[0].SubmissionID)
	assert.Equal(t, 2, published[0].GuestCount)
}

func TestSubmitWalkInNotInRoster(t *testing.T) {
	h, _ := newGuestHandler(t)

	rec := doSubmit(t, h, `{"name":"Walk In","attending":"no"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp rsvpResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.InRoster, "submission kept even when the roster has no such name")
	assert.Equal(t, model.AttendingNo, resp.Submission.Attending)
}
