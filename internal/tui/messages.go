package tui

import (
	"github.com/loopwell/invitekit/internal/client"
	"github.com/loopwell/invitekit/internal/events"
	"github.com/loopwell/invitekit/internal/flow"
	"github.com/loopwell/invitekit/internal/invite"
)

// The view mode is the flow session's state; the model defines no enum of
// its own. Messages below follow the operation they complete.

// Configuration Messages

// ConfigRefreshedMsg indicates a live configuration fetch landed.
type ConfigRefreshedMsg struct{}

// ConfigRefreshErrorMsg indicates the live fetch failed.
type ConfigRefreshErrorMsg struct {
	Err error
}

// ConfigRefreshCancelledMsg indicates the fetch was cancelled or collapsed
// into one already in flight.
type ConfigRefreshCancelledMsg struct{}

// Contact List Messages

// ContactsLoadedMsg carries the contact list for one picker state.
type ContactsLoadedMsg struct {
	State flow.State
	Items []invite.ListItem
}

// ContactsErrorMsg indicates a contact list could not be loaded.
type ContactsErrorMsg struct {
	State flow.State
	Err   error
}

// Email Messages

// EmailsSentMsg carries the per-address outcome of a bulk email send.
type EmailsSentMsg struct {
	Results []invite.EmailResult
	Err     error
}

// Row Action Messages

// RowActionDoneMsg indicates an invite, connect, or dismiss on one list row
// finished. The row's resulting state lives in the orchestrator's tracker
// for Source; Err reports refusals that never reach the tracker.
type RowActionDoneMsg struct {
	Source string
	Key    string
	Err    error
}

// People Search Messages

// PeopleFoundMsg carries member search results for a query.
type PeopleFoundMsg struct {
	Query string
	Items []invite.ListItem
}

// PeopleSearchErrorMsg indicates the member search failed.
type PeopleSearchErrorMsg struct {
	Err error
}

// Feed Messages

// SuggestionsLoadedMsg carries the suggested-members feed.
type SuggestionsLoadedMsg struct {
	Items []invite.ListItem
}

// OutgoingLoadedMsg carries the outgoing invitations list.
type OutgoingLoadedMsg struct {
	Items []invite.ListItem
}

// ListErrorMsg indicates a background list fetch failed; the surface keeps
// rendering its empty state.
type ListErrorMsg struct {
	Surface string
	Err     error
}

// Link Messages

// LinkFetchedMsg indicates the shareable link is available.
type LinkFetchedMsg struct {
	Link *client.ShareableLink
}

// LinkErrorMsg indicates the shareable link fetch failed.
type LinkErrorMsg struct {
	Err error
}

// Event Bus Messages

// InvitationSentMsg delivers one bus event into the update loop.
type InvitationSentMsg struct {
	Event events.InvitationSent
}
