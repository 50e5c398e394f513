package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/model"
)

var fallbackNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func TestSynthesizeFallbackFromRespondedEntry(t *testing.T) {
	entry := &model.RosterEntry{
		ID: "r42", Name: "Noa Levi", Email: "noa@x.com", Phone: "555-0102",
		HasResponded: true, Response: model.ResponseAttending,
		AdultCount: 0, ChildCount: 2,
		SubmittedAt: docstore.NewTimestamp(fallbackNow.Add(-24 * time.Hour)),
	}

	sub := SynthesizeFallback(entry, false, fallbackNow)
	require.NotNil(t, sub)

	assert.Equal(t, "fallback-r42", sub.ID)
	assert.Equal(t, model.KindSynthesized, sub.Kind)
	assert.True(t, sub.IsFallback)
	assert.False(t, sub.IsNewFallback)
	assert.False(t, sub.IsEmergencyFallback)
	assert.Equal(t, model.AttendingYes, sub.Attending)
	assert.Equal(t, 2, sub.GuestCount, "child-only party keeps child count as guest count")
	assert.Equal(t, entry.SubmittedAt.Millis(), sub.SubmittedAt.Millis())
}

func TestSynthesizeFallbackDeclined(t *testing.T) {
	entry := &model.RosterEntry{
		ID: "r7", Name: "Dana Paz",
		HasResponded: true, Response: model.ResponseDeclined,
	}

	sub := SynthesizeFallback(entry, false, fallbackNow)
	require.NotNil(t, sub)
	assert.Equal(t, model.AttendingNo, sub.Attending)
	assert.Equal(t, 0, sub.GuestCount)
}

func TestSynthesizeFallbackUnrespondedMarkedNew(t *testing.T) {
	entry := &model.RosterEntry{ID: "r9", Name: "Gil Bar", HasResponded: false}

	sub := SynthesizeFallback(entry, false, fallbackNow)
	require.NotNil(t, sub)
	assert.True(t, sub.IsNewFallback,
		"without a roster hint this is a best-effort default, not a prior response")
	assert.Equal(t, fallbackNow.UnixMilli(), sub.SubmittedAt.Millis(),
		"now is supplied at the point of use")
}

func TestSynthesizeFallbackZeroCountsStaySane(t *testing.T) {
	entry := &model.RosterEntry{
		ID: "r3", Name: "Omer Gal",
		HasResponded: true, Response: model.ResponseAttending,
		AdultCount: 0, ChildCount: 0,
	}

	sub := SynthesizeFallback(entry, false, fallbackNow)
	require.NotNil(t, sub)
	assert.GreaterOrEqual(t, sub.GuestCount, 0)
	assert.Equal(t, 1, sub.GuestCount, "an attending party is at least the guest themselves")
}

func TestSynthesizeFallbackEmergencyPrefix(t *testing.T) {
	entry := &model.RosterEntry{ID: "r5", Name: "Lior Katz", HasResponded: true, Response: model.ResponseAttending}
	sub := SynthesizeFallback(entry, true, fallbackNow)
	require.NotNil(t, sub)
	assert.Equal(t, "emergency-fallback-r5", sub.ID)
	assert.True(t, sub.IsEmergencyFallback)

	// Without a roster id the timestamp keeps the id unique.
	anon := SynthesizeFallback(&model.RosterEntry{Name: "x"}, true, fallbackNow)
	assert.Contains(t, anon.ID, "emergency-fallback-")
	assert.NotEqual(t, "emergency-fallback-", anon.ID)
}

func TestSynthesizeFallbackAdditionalGuestsCarryOver(t *testing.T) {
	entry := &model.RosterEntry{
		ID: "r8", Name: "Tal Peri",
		HasResponded: true, Response: model.ResponseAttending,
		AdditionalGuests: []string{"Mor Peri", "Ben Peri"},
	}

	sub := SynthesizeFallback(entry, false, fallbackNow)
	require.NotNil(t, sub)
	assert.Equal(t, []string{"Mor Peri", "Ben Peri"}, sub.AdultGuests)
	assert.Equal(t, 2, sub.AdultCount)
}
