// Package queue defines message payloads exchanged over the broker and the
// background consumer that triggers batch reconciliation.
package queue

// RSVPReceivedEvent is published after a submission has been stored. It
// carries enough for downstream consumers (notifications, spreadsheet sync,
// analytics) to act without querying the primary store.
type RSVPReceivedEvent struct {
	SubmissionID string `json:"submission_id"`
	GuestName    string `json:"guest_name"`
	Email        string `json:"email"`
	Attending    string `json:"attending"`
	GuestCount   int    `json:"guest_count"`
	AdultCount   int    `json:"adult_count"`
	ChildCount   int    `json:"child_count"`
	SubmittedAt  string `json:"submitted_at"`
}

// RosterSyncRequested asks the service to run a full reconciliation pass.
// Published by the roster import and spreadsheet sync collaborators after
// they finish writing.
type RosterSyncRequested struct {
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
	RequestedAt string `json:"requested_at"`
}
