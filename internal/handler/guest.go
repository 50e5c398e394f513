package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
	"github.com/gatherly/guestlist/internal/queue"
	"github.com/gatherly/guestlist/internal/reconcile"
	queue_publisher "github.com/gatherly/guestlist/internal/service"
)

// GuestHandler serves the public guest-facing endpoints: looking yourself
// up on the guest list and submitting an RSVP. Neither requires
// authentication; both are rate-limited at the router.
type GuestHandler struct {
	Orch  *reconcile.Orchestrator
	Store docstore.Store
	Log   zerolog.Logger

	// publish is swappable in tests.
	publish func(context.Context, queue.RSVPReceivedEvent) error
}

func NewGuestHandler(orch *reconcile.Orchestrator, store docstore.Store, log zerolog.Logger) *GuestHandler {
	return &GuestHandler{
		Orch:    orch,
		Store:   store,
		Log:     log.With().Str("component", "guest").Logger(),
		publish: queue_publisher.PublishRSVPReceived,
	}
}

// Lookup resolves a guest by display name: GET /v1/guests/lookup?name=.
// Degraded results (fallback data, ambiguous match) still return 200 with
// warnings on the body; only an unknown name is a 404.
func (h *GuestHandler) Lookup(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name query parameter required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Orch.ResolveGuest(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrGuestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not in list"})
		case errors.Is(err, reconcile.ErrLookupSuperseded):
			// A newer lookup for another guest started while this one was
			// in flight; the client has already moved on.
			return c.JSON(http.StatusConflict, echo.Map{"error": "lookup superseded"})
		default:
			h.Log.Error().Err(err).Str("name", name).Msg("guest lookup failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
		}
	}
	return c.JSON(http.StatusOK, res)
}

type rsvpReq struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Attending   string   `json:"attending"`
	AdultGuests []string `json:"adultGuests"`
	ChildGuests []string `json:"childGuests"`
	AdultCount  int      `json:"adultCount"`
	ChildCount  int      `json:"childCount"`
}

type rsvpResp struct {
	Submission *model.SubmissionRecord `json:"submission"`
	InRoster   bool                    `json:"inRoster"`
}

// Submit stores an RSVP: POST /v1/rsvp. The record is normalized, given a
// fresh id, written to the submissions collection and announced on the
// broker. The matching roster entry, when one exists, is repaired in the
// same request so organizer views reflect the response immediately.
func (h *GuestHandler) Submit(c echo.Context) error {
	var req rsvpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if a := strings.ToLower(strings.TrimSpace(req.Attending)); a != "" &&
		a != model.AttendingYes && a != model.AttendingNo {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "attending must be yes or no"})
	}

	rec := &model.SubmissionRecord{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Attending:   strings.ToLower(strings.TrimSpace(req.Attending)),
		AdultGuests: req.AdultGuests,
		ChildGuests: req.ChildGuests,
		AdultCount:  req.AdultCount,
		ChildCount:  req.ChildCount,
		SubmittedAt: docstore.Now(),
		Kind:        model.KindStored,
	}
	reconcile.Normalize(rec)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Set(ctx, docstore.CollectionSubmissions, rec.ID, rec); err != nil {
		if errors.Is(err, docstore.ErrPermissionDenied) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "submission store unavailable"})
		}
		h.Log.Error().Err(err).Str("name", rec.Name).Msg("store submission failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store submission failed"})
	}

	// Best-effort: a broker outage must not lose the stored submission.
	_ = h.publish(ctx, queue.RSVPReceivedEvent{
		SubmissionID: rec.ID,
		GuestName:    rec.Name,
		Email:        rec.Email,
		Attending:    rec.Attending,
		GuestCount:   rec.GuestCount,
		AdultCount:   rec.AdultCount,
		ChildCount:   rec.ChildCount,
		SubmittedAt:  rec.SubmittedAt.Time().Format(time.RFC3339),
	})

	// Repair the roster entry now rather than waiting for the next batch
	// pass. Names outside the roster are fine: walk-in submissions are kept
	// and matched if the roster later gains the name.
	inRoster := true
	if _, err := h.Orch.ResolveGuest(ctx, rec.Name); err != nil {
		if errors.Is(err, reconcile.ErrGuestNotFound) {
			inRoster = false
		} else if !errors.Is(err, reconcile.ErrLookupSuperseded) {
			h.Log.Warn().Err(err).Str("name", rec.Name).Msg("post-submit roster repair failed")
		}
	}

	return c.JSON(http.StatusCreated, rsvpResp{Submission: rec, InRoster: inRoster})
}
