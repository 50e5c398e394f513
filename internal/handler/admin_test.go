package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
	"github.com/gatherly/guestlist/internal/reconcile"
)

func newAdminHandler(t *testing.T) (*AdminHandler, *docstore.Memory) {
	t.Helper()
	store := docstore.NewMemory()
	orch := reconcile.NewOrchestrator(store, zerolog.Nop())
	return NewAdminHandler(orch, store, zerolog.Nop()), store
}

func seedAdminFixture(t *testing.T, store *docstore.Memory) {
	t.Helper()
	ctx := context.Background()
	t1 := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	for _, e := range []*model.RosterEntry{
		{ID: "r1", Name: "Sam Lee", Email: "sam@x.com", Category: "family"},
		{ID: "r2", Name: "Pat Kim", Email: "pat@x.com", Category: "work",
			HasResponded: true, Response: model.ResponseDeclined},
		{ID: "r3", Name: "Never Answered", Category: "family"},
	} {
		require.NoError(t, store.Set(ctx, docstore.CollectionRoster, e.ID, e))
	}
	for _, s := range []*model.SubmissionRecord{
		{ID: "s1", Name: "Sam Lee", Email: "sam@x.com",
			Attending: model.AttendingYes, AdultCount: 2,
			SubmittedAt: docstore.NewTimestamp(t1)},
		// Disagrees with Pat Kim's cached decline on the roster.
		{ID: "s2", Name: "Pat Kim", Email: "pat@x.com",
			Attending:   model.AttendingYes,
			SubmittedAt: docstore.NewTimestamp(t1)},
	} {
		require.NoError(t, store.Set(ctx, docstore.CollectionSubmissions, s.ID, s))
	}
}

func adminGet(t *testing.T, target string, fn echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, fn(e.NewContext(req, rec)))
	return rec
}

func TestAdminReconcile(t *testing.T) {
	h, store := newAdminHandler(t)
	seedAdminFixture(t, store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/reconcile", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Reconcile(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var report reconcile.SyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Conflicts)
	assert.Equal(t, 1, report.Unresponded)
}

func TestAdminGuestsListsResolutionState(t *testing.T) {
	h, store := newAdminHandler(t)
	seedAdminFixture(t, store)

	rec := adminGet(t, "/v1/admin/guests", h.Guests)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count  int        `json:"count"`
		Guests []guestRow `json:"guests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 3, body.Count)

	byID := map[string]guestRow{}
	for _, row := range body.Guests {
		byID[row.Roster.ID] = row
	}
	assert.Equal(t, model.MatchEmail, byID["r1"].MatchMethod)
	assert.Equal(t, model.MatchNone, byID["r3"].MatchMethod)
	assert.NotEmpty(t, byID["r2"].Conflicts, "cached decline disagrees with submission")
}

func TestAdminGuestsCategoryFilter(t *testing.T) {
	h, store := newAdminHandler(t)
	seedAdminFixture(t, store)

	rec := adminGet(t, "/v1/admin/guests?category=family", h.Guests)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestAdminExportCSV(t *testing.T) {
	h, store := newAdminHandler(t)
	seedAdminFixture(t, store)

	rec := adminGet(t, "/v1/admin/guests/export", h.Export)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per roster entry")
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "r1", rows[1][0])
	assert.Equal(t, "Sam Lee", rows[1][1])
}

func TestAdminStats(t *testing.T) {
	h, store := newAdminHandler(t)
	seedAdminFixture(t, store)

	// Reconcile first so cached roster state reflects the submissions.
	_, err := h.Orch.ReconcileAll(context.Background())
	require.NoError(t, err)

	rec := adminGet(t, "/v1/admin/stats", h.Stats)
	require.Equal(t, http.StatusOK, rec.Code)

	var s statsResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Responded)
	assert.Equal(t, 2, s.Attending)
	assert.Equal(t, 0, s.Declined)
	assert.Equal(t, 1, s.Unresponded)
	assert.Equal(t, 3, s.Guests)
}
