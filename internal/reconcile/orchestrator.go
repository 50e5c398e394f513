package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
)

// Orchestrator drives a reconciliation end to end: roster lookup,
// submission resolution, conflict detection, roster repair, and fallback
// synthesis on a permission failure. It holds no mutable domain state of
// its own; everything flows through method arguments and the store.
type Orchestrator struct {
	store docstore.Store
	log   zerolog.Logger
	// gen implements last-request-wins for interactive lookups: a lookup
	// whose generation is no longer current when it completes is dropped.
	gen atomic.Uint64
	// now is swappable in tests.
	now func() time.Time
}

// NewOrchestrator wires the engine to a document store.
func NewOrchestrator(store docstore.Store, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store: store,
		log:   log.With().Str("component", "reconcile").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SyncReport summarizes one batch reconciliation pass.
type SyncReport struct {
	Updated     int `json:"updated"`
	Conflicts   int `json:"conflicts"`
	Unresponded int `json:"unresponded"`
}

// ResolveGuest looks up a single guest by display name and resolves their
// authoritative submission, if any.
//
// The roster read completes before the submission lookup begins, since the
// entry's email and id feed the submission match. A PermissionDenied from
// the submission store is recovered locally through fallback synthesis;
// every other store failure propagates unchanged so the surrounding
// collaborator can apply its retry policy. ErrGuestNotFound aborts the
// lookup; ErrLookupSuperseded means a newer lookup started in the meantime
// and this result must be discarded.
func (o *Orchestrator) ResolveGuest(ctx context.Context, name string) (*model.ReconciliationResult, error) {
	gen := o.gen.Add(1)

	entry, err := o.findRosterEntry(ctx, name)
	if err != nil {
		return nil, err
	}

	result, err := o.resolveAgainstSubmissions(ctx, entry)
	if err != nil {
		// Outer failure handler: a permission failure that escaped the
		// inner recovery still gets a degraded answer when roster
		// evidence allows one.
		if errors.Is(err, docstore.ErrPermissionDenied) {
			o.log.Warn().Err(err).Str("guest", entry.Name).
				Msg("submission store unreadable past inner recovery, synthesizing emergency fallback")
			sub := SynthesizeFallback(entry, true, o.now())
			result = &model.ReconciliationResult{
				Roster:      entry,
				Submission:  sub,
				MatchMethod: model.MatchNone,
				Warnings:    []string{ErrUnverifiedResponse.Error()},
			}
		} else {
			return nil, err
		}
	}

	if o.gen.Load() != gen {
		return nil, ErrLookupSuperseded
	}
	return result, nil
}

// resolveAgainstSubmissions runs the Matched/NotMatched stage for one
// roster entry, including the inner permission-failure recovery and the
// best-effort roster repair.
func (o *Orchestrator) resolveAgainstSubmissions(ctx context.Context, entry *model.RosterEntry) (*model.ReconciliationResult, error) {
	subs, err := o.loadSubmissions(ctx)
	if err != nil {
		if !errors.Is(err, docstore.ErrPermissionDenied) {
			return nil, fmt.Errorf("load submissions: %w", err)
		}
		// Inner recovery: the store said no, but the roster may still
		// carry enough evidence for a degraded answer.
		result := &model.ReconciliationResult{
			Roster:      entry,
			Submission:  SynthesizeFallback(entry, false, o.now()),
			MatchMethod: model.MatchNone,
		}
		if entry.HasResponded {
			o.log.Warn().Str("guest", entry.Name).
				Msg("submission store unreadable, serving fallback built from roster")
		} else {
			result.Warnings = append(result.Warnings, ErrUnverifiedResponse.Error())
		}
		return result, nil
	}

	ix := BuildIndexes(subs)
	sub, method, ambiguous := ix.Resolve(entry)

	result := &model.ReconciliationResult{
		Roster:      entry,
		Submission:  sub,
		MatchMethod: method,
	}
	if sub == nil {
		result.MatchMethod = model.MatchNone
		return result, nil
	}
	if ambiguous {
		result.Warnings = append(result.Warnings, ErrAmbiguousMatch.Error())
		o.log.Warn().Str("guest", entry.Name).
			Msg("name-only match with multiple candidates, picked latest by timestamp")
	}

	result.Conflicts = DetectConflicts(entry, sub)
	for _, c := range result.Conflicts {
		o.log.Info().Str("guest", entry.Name).Str("conflict", c).Msg("roster/submission disagreement")
	}

	if fields := repairFields(entry, sub, method); len(fields) > 0 {
		// Best-effort single write; a failed repair must not fail the
		// lookup, the next pass will retry.
		if err := o.store.Update(ctx, docstore.CollectionRoster, entry.ID, fields); err != nil {
			o.log.Warn().Err(err).Str("guest", entry.Name).Msg("roster repair failed")
		} else {
			applyRepair(entry, fields)
		}
	}
	return result, nil
}

// findRosterEntry locates the roster entry for a display name. The store
// only filters by exact equality, so an exact query runs first and a
// case-insensitive scan over the (small) roster covers the rest.
func (o *Orchestrator) findRosterEntry(ctx context.Context, name string) (*model.RosterEntry, error) {
	docs, err := o.store.Query(ctx, docstore.CollectionRoster,
		&docstore.Filter{Field: "name", Value: name})
	if err != nil {
		return nil, fmt.Errorf("roster lookup: %w", err)
	}
	if len(docs) == 0 {
		docs, err = o.store.Query(ctx, docstore.CollectionRoster, nil)
		if err != nil {
			return nil, fmt.Errorf("roster scan: %w", err)
		}
		key := normalizeKey(name)
		filtered := docs[:0]
		for _, d := range docs {
			if e := decodeRoster(d); normalizeKey(e.Name) == key {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%q: %w", name, ErrGuestNotFound)
	}
	// Roster names should be unique case-insensitively; tolerate
	// violations by taking the first entry in id order.
	return decodeRoster(docs[0]), nil
}

func (o *Orchestrator) loadSubmissions(ctx context.Context) ([]*model.SubmissionRecord, error) {
	docs, err := o.store.Query(ctx, docstore.CollectionSubmissions, nil)
	if err != nil {
		return nil, err
	}
	subs := make([]*model.SubmissionRecord, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, decodeSubmission(d))
	}
	return subs, nil
}

func (o *Orchestrator) loadRoster(ctx context.Context) ([]*model.RosterEntry, error) {
	docs, err := o.store.Query(ctx, docstore.CollectionRoster, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]*model.RosterEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, decodeRoster(d))
	}
	return entries, nil
}

func decodeRoster(d docstore.Document) *model.RosterEntry {
	var e model.RosterEntry
	_ = d.Decode(&e)
	if e.ID == "" {
		e.ID = d.ID
	}
	return &e
}

// repairFields computes the roster mutation needed to bring an entry in
// line with its authoritative submission. An empty map means the entry is
// already consistent, which is what makes the batch pass idempotent.
//
// Contact fields are only overwritten on an email or id tier match: a
// name-only match is the least reliable join key and must not corrupt
// contact data.
func repairFields(entry *model.RosterEntry, sub *model.SubmissionRecord, method model.MatchMethod) map[string]any {
	if sub.Kind == model.KindSynthesized {
		return nil
	}
	fields := make(map[string]any)

	response := model.ResponseAttending
	if sub.Attending == model.AttendingNo {
		response = model.ResponseDeclined
	}
	if !entry.HasResponded {
		fields["hasResponded"] = true
	}
	if entry.Response != response {
		fields["response"] = response
	}
	if entry.ActualGuestCount != sub.GuestCount {
		fields["actualGuestCount"] = sub.GuestCount
	}
	if entry.AdultCount != sub.AdultCount {
		fields["adultCount"] = sub.AdultCount
	}
	if entry.ChildCount != sub.ChildCount {
		fields["childCount"] = sub.ChildCount
	}
	if !sub.SubmittedAt.IsZero() && entry.SubmittedAt.Millis() != sub.SubmittedAt.Millis() {
		fields["submittedAt"] = sub.SubmittedAt
	}

	if method != model.MatchName {
		if sub.Email != "" && !equalFoldTrim(entry.Email, sub.Email) {
			fields["email"] = sub.Email
		}
		if sub.Phone != "" && entry.Phone != sub.Phone {
			fields["phone"] = sub.Phone
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func equalFoldTrim(a, b string) bool {
	return normalizeKey(a) == normalizeKey(b)
}

// applyRepair mirrors a successful roster write onto the in-memory entry so
// the returned result reflects what is now stored.
func applyRepair(entry *model.RosterEntry, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "hasResponded":
			entry.HasResponded = v.(bool)
		case "response":
			entry.Response = v.(string)
		case "actualGuestCount":
			entry.ActualGuestCount = v.(int)
		case "adultCount":
			entry.AdultCount = v.(int)
		case "childCount":
			entry.ChildCount = v.(int)
		case "submittedAt":
			entry.SubmittedAt = v.(docstore.Timestamp)
		case "email":
			entry.Email = v.(string)
		case "phone":
			entry.Phone = v.(string)
		}
	}
}

// ReconcileAll runs the batch pass over the whole roster. Both collections
// are read in full before any entry is evaluated, so the latest-submission
// tie-break works over a consistent snapshot, and each entry is then
// matched in O(1) against the prebuilt indexes. Roster repairs are chunked
// to the store's batch bound. Running the pass twice over unchanged data
// performs no further mutations and reports the same conflict count.
func (o *Orchestrator) ReconcileAll(ctx context.Context) (SyncReport, error) {
	var report SyncReport

	subs, err := o.loadSubmissions(ctx)
	if err != nil {
		return report, fmt.Errorf("load submissions: %w", err)
	}
	entries, err := o.loadRoster(ctx)
	if err != nil {
		return report, fmt.Errorf("load roster: %w", err)
	}
	ix := BuildIndexes(subs)

	var ops []docstore.WriteOp
	for _, entry := range entries {
		sub, method, ambiguous := ix.Resolve(entry)
		if sub == nil {
			if !entry.HasResponded {
				report.Unresponded++
			}
			continue
		}
		if ambiguous {
			o.log.Warn().Str("guest", entry.Name).
				Msg("ambiguous name match during batch sync")
		}
		if len(DetectConflicts(entry, sub)) > 0 {
			report.Conflicts++
		}
		if fields := repairFields(entry, sub, method); len(fields) > 0 {
			ops = append(ops, docstore.WriteOp{Op: docstore.OpUpdate, ID: entry.ID, Fields: fields})
			report.Updated++
		}
	}

	for start := 0; start < len(ops); start += docstore.MaxBatchOps {
		end := start + docstore.MaxBatchOps
		if end > len(ops) {
			end = len(ops)
		}
		if err := o.store.BatchWrite(ctx, docstore.CollectionRoster, ops[start:end]); err != nil {
			return report, fmt.Errorf("apply roster repairs: %w", err)
		}
	}

	o.log.Info().
		Int("updated", report.Updated).
		Int("conflicts", report.Conflicts).
		Int("unresponded", report.Unresponded).
		Msg("batch reconciliation complete")
	return report, nil
}
