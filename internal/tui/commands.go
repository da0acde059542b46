package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopwell/invitekit/internal/events"
	"github.com/loopwell/invitekit/internal/flow"
	"github.com/loopwell/invitekit/internal/invite"
)

// refreshConfigCmd runs one live configuration fetch through the session.
func refreshConfigCmd(ctx context.Context, session *flow.Session) tea.Cmd {
	return func() tea.Msg {
		if err := session.Refresh(ctx); err != nil {
			if ctx.Err() != nil || errors.Is(err, flow.ErrRefreshInFlight) {
				return ConfigRefreshCancelledMsg{}
			}
			return ConfigRefreshErrorMsg{Err: err}
		}
		return ConfigRefreshedMsg{}
	}
}

// loadContactsCmd fills the contact list behind one picker state.
func loadContactsCmd(ctx context.Context, session *flow.Session, state flow.State) tea.Cmd {
	return func() tea.Msg {
		var (
			items []invite.ListItem
			err   error
		)
		if state == flow.StateGoogleContactsPicker {
			items, err = session.LoadGoogleContacts(ctx)
		} else {
			items, err = session.LoadContacts(ctx)
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return ContactsErrorMsg{State: state, Err: err}
		}
		return ContactsLoadedMsg{State: state, Items: items}
	}
}

// sendEmailsCmd dispatches one bulk email send.
func sendEmailsCmd(ctx context.Context, orch *invite.Orchestrator, addresses []string) tea.Cmd {
	return func() tea.Msg {
		results, err := orch.InviteEmails(ctx, addresses)
		if ctx.Err() != nil {
			return nil
		}
		return EmailsSentMsg{Results: results, Err: err}
	}
}

// inviteContactCmd invites the selected contact row, tagged for whichever
// picker it came from.
func inviteContactCmd(ctx context.Context, orch *invite.Orchestrator, state flow.State, item invite.ListItem) tea.Cmd {
	return func() tea.Msg {
		var err error
		source := invite.SourceContacts
		if state == flow.StateGoogleContactsPicker {
			source = invite.SourceGoogle
			_, err = orch.InviteGoogleContact(ctx, item)
		} else {
			_, err = orch.InviteContact(ctx, item)
		}
		return RowActionDoneMsg{Source: source, Key: item.Key(), Err: err}
	}
}

// inviteSuggestionCmd invites the selected suggestion row.
func inviteSuggestionCmd(ctx context.Context, orch *invite.Orchestrator, item invite.ListItem) tea.Cmd {
	return func() tea.Msg {
		_, err := orch.InviteSuggestion(ctx, item)
		return RowActionDoneMsg{Source: invite.SourceOther, Key: item.Key(), Err: err}
	}
}

// connectMemberCmd sends a connection request to a found member.
func connectMemberCmd(ctx context.Context, orch *invite.Orchestrator, item invite.ListItem) tea.Cmd {
	return func() tea.Msg {
		_, err := orch.ConnectMember(ctx, item)
		return RowActionDoneMsg{Source: invite.SourceOther, Key: item.Key(), Err: err}
	}
}

// dismissSuggestionCmd hides a suggestion row for the session.
func dismissSuggestionCmd(orch *invite.Orchestrator, item invite.ListItem) tea.Cmd {
	return func() tea.Msg {
		err := orch.DismissSuggestion(item)
		return RowActionDoneMsg{Source: invite.SourceOther, Key: item.Key(), Err: err}
	}
}

// findPeopleCmd runs one member search.
func findPeopleCmd(ctx context.Context, orch *invite.Orchestrator, query string) tea.Cmd {
	return func() tea.Msg {
		items, err := orch.FindFriends(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return PeopleSearchErrorMsg{Err: err}
		}
		return PeopleFoundMsg{Query: query, Items: items}
	}
}

// loadSuggestionsCmd fetches the suggested-members feed.
func loadSuggestionsCmd(ctx context.Context, orch *invite.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		items, err := orch.Suggestions(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return ListErrorMsg{Surface: "suggestions", Err: err}
		}
		return SuggestionsLoadedMsg{Items: items}
	}
}

// loadOutgoingCmd fetches the outgoing invitations list.
func loadOutgoingCmd(ctx context.Context, orch *invite.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		items, err := orch.OutgoingInvitations(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return ListErrorMsg{Surface: "outgoing", Err: err}
		}
		return OutgoingLoadedMsg{Items: items}
	}
}

// fetchLinkCmd resolves the session's shareable link. A fetch already in
// flight needs no message; its own completion will arrive.
func fetchLinkCmd(ctx context.Context, session *flow.Session) tea.Cmd {
	return func() tea.Msg {
		link, err := session.FetchLink(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, flow.ErrLinkFetchInFlight) {
				return nil
			}
			return LinkErrorMsg{Err: err}
		}
		return LinkFetchedMsg{Link: link}
	}
}

// listenForEventsCmd blocks on the bus feed and delivers the next event.
// The update loop re-arms it after every delivery.
func listenForEventsCmd(ctx context.Context, feed <-chan events.InvitationSent) tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-feed:
			return InvitationSentMsg{Event: event}
		case <-ctx.Done():
			return nil
		}
	}
}
