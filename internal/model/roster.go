package model

import "github.com/gatherly/guestlist/internal/docstore"

// Response values cached on a roster entry once a guest has answered.
const (
	ResponseAttending = "attending"
	ResponseDeclined  = "declined"
)

// RosterEntry is one invited party, imported from the organizer's guest
// list. The display name doubles as the join key towards submissions when
// no better key exists, so it is expected to be unique within the roster
// under case-insensitive comparison; the engine tolerates violations.
//
// The JSON tags are the persisted field names and form a contract with the
// roster import/export collaborators. They must not be renamed without
// updating those collaborators in lockstep.
//
// Fields:
//  ID               – store-assigned identifier, stable.
//  Name             – display name, free text.
//  Email, Phone     – contact fields, may be empty.
//  Category         – free-text group label (e.g. "family", "work").
//  MaxAllowedGuests – cap on the party size, >= 0.
//  HasResponded     – whether an RSVP is on file for this party.
//  Response         – cached attendance ("attending"|"declined"|empty).
//  ActualGuestCount – cached total party size from the latest submission.
//  AdultCount       – cached adult count.
//  ChildCount       – cached child count.
//  AdditionalGuests – ordered names of extra guests in the party.
//  AddressLine1/2, City, State, Zip – mailing address.
//  SubmittedAt      – timestamp of the cached response, may be absent.
//  ImportedAt       – set by the roster-import collaborator.
//  LastSyncedAt     – set by the spreadsheet sync collaborator.
type RosterEntry struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Email            string             `json:"email"`
	Phone            string             `json:"phone"`
	Category         string             `json:"category"`
	MaxAllowedGuests int                `json:"maxAllowedGuests"`
	HasResponded     bool               `json:"hasResponded"`
	Response         string             `json:"response,omitempty"`
	ActualGuestCount int                `json:"actualGuestCount"`
	AdultCount       int                `json:"adultCount"`
	ChildCount       int                `json:"childCount"`
	AdditionalGuests []string           `json:"additionalGuests,omitempty"`
	AddressLine1     string             `json:"addressLine1,omitempty"`
	AddressLine2     string             `json:"addressLine2,omitempty"`
	City             string             `json:"city,omitempty"`
	State            string             `json:"state,omitempty"`
	Zip              string             `json:"zip,omitempty"`
	SubmittedAt      docstore.Timestamp `json:"submittedAt,omitempty"`
	ImportedAt       docstore.Timestamp `json:"importedAt,omitempty"`
	LastSyncedAt     docstore.Timestamp `json:"lastSyncedAt,omitempty"`
}
