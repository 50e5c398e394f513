package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
	"github.com/gatherly/guestlist/internal/reconcile"
)

// AdminHandler serves the organizer-side views: running a batch sync,
// listing the roster with its resolution state, CSV export and attendance
// stats. All routes require a staff JWT.
type AdminHandler struct {
	Orch  *reconcile.Orchestrator
	Store docstore.Store
	Log   zerolog.Logger
}

func NewAdminHandler(orch *reconcile.Orchestrator, store docstore.Store, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{Orch: orch, Store: store, Log: log.With().Str("component", "admin").Logger()}
}

// Reconcile runs a full batch pass: POST /v1/admin/reconcile.
func (h *AdminHandler) Reconcile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	report, err := h.Orch.ReconcileAll(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("batch reconciliation failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconcile failed"})
	}
	return c.JSON(http.StatusOK, report)
}

// guestRow is one roster entry joined with its resolution state.
type guestRow struct {
	Roster      *model.RosterEntry `json:"roster"`
	MatchMethod model.MatchMethod  `json:"matchMethod"`
	Conflicts   []string           `json:"conflicts,omitempty"`
	Ambiguous   bool               `json:"ambiguous,omitempty"`
}

// loadRows reads both collections and resolves every roster entry against
// the submission snapshot, optionally filtered by category.
func (h *AdminHandler) loadRows(ctx context.Context, category string) ([]guestRow, error) {
	var filter *docstore.Filter
	if category != "" {
		filter = &docstore.Filter{Field: "category", Value: category}
	}
	rosterDocs, err := h.Store.Query(ctx, docstore.CollectionRoster, filter)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	subDocs, err := h.Store.Query(ctx, docstore.CollectionSubmissions, nil)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	subs := make([]*model.SubmissionRecord, 0, len(subDocs))
	for _, d := range subDocs {
		var s model.SubmissionRecord
		_ = d.Decode(&s)
		if s.ID == "" {
			s.ID = d.ID
		}
		reconcile.Normalize(&s)
		subs = append(subs, &s)
	}
	ix := reconcile.BuildIndexes(subs)

	rows := make([]guestRow, 0, len(rosterDocs))
	for _, d := range rosterDocs {
		var e model.RosterEntry
		_ = d.Decode(&e)
		if e.ID == "" {
			e.ID = d.ID
		}
		sub, method, ambiguous := ix.Resolve(&e)
		row := guestRow{Roster: &e, MatchMethod: method, Ambiguous: ambiguous}
		if sub != nil {
			row.Conflicts = reconcile.DetectConflicts(&e, sub)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Guests lists the roster with resolution state: GET /v1/admin/guests.
// Supports ?category= filtering.
func (h *AdminHandler) Guests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	rows, err := h.loadRows(ctx, strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		h.Log.Error().Err(err).Msg("list guests failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list guests failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rows), "guests": rows})
}

// Export streams the reconciled roster as CSV: GET /v1/admin/guests/export.
func (h *AdminHandler) Export(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	rows, err := h.loadRows(ctx, strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		h.Log.Error().Err(err).Msg("export failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="guestlist.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	header := []string{
		"id", "name", "email", "phone", "category",
		"has_responded", "response", "actual_guest_count",
		"adult_count", "child_count", "match_method", "conflicts", "submitted_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		e := row.Roster
		submittedAt := ""
		if !e.SubmittedAt.IsZero() {
			submittedAt = e.SubmittedAt.Time().Format(time.RFC3339)
		}
		record := []string{
			e.ID, e.Name, e.Email, e.Phone, e.Category,
			fmt.Sprintf("%t", e.HasResponded), e.Response,
			fmt.Sprintf("%d", e.ActualGuestCount),
			fmt.Sprintf("%d", e.AdultCount),
			fmt.Sprintf("%d", e.ChildCount),
			string(row.MatchMethod),
			strings.Join(row.Conflicts, "; "),
			submittedAt,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type statsResp struct {
	Total       int `json:"total"`
	Responded   int `json:"responded"`
	Attending   int `json:"attending"`
	Declined    int `json:"declined"`
	Unresponded int `json:"unresponded"`
	Guests      int `json:"guests"`
	Adults      int `json:"adults"`
	Children    int `json:"children"`
	Conflicts   int `json:"conflicts"`
}

// Stats returns attendance aggregates: GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	rows, err := h.loadRows(ctx, "")
	if err != nil {
		h.Log.Error().Err(err).Msg("stats failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}

	var s statsResp
	s.Total = len(rows)
	for _, row := range rows {
		e := row.Roster
		if len(row.Conflicts) > 0 {
			s.Conflicts++
		}
		if !e.HasResponded {
			s.Unresponded++
			continue
		}
		s.Responded++
		switch e.Response {
		case model.ResponseAttending:
			s.Attending++
			s.Guests += e.ActualGuestCount
			s.Adults += e.AdultCount
			s.Children += e.ChildCount
		case model.ResponseDeclined:
			s.Declined++
		}
	}
	return c.JSON(http.StatusOK, s)
}
