package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopwell/invitekit/internal/flow"
	"github.com/loopwell/invitekit/internal/invite"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// System messages
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		applyMaxWidth(m.width)

		const minWidth = 60
		const minHeight = 16
		if m.width < minWidth || m.height < minHeight {
			m.setError(fmt.Sprintf("Terminal too small (%dx%d). Minimum size: %dx%d",
				m.width, m.height, minWidth, minHeight))
		} else if strings.HasPrefix(m.errorMsg, "Terminal too small") {
			m.clearError()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	// Spinner tick for loading animations
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// Configuration messages
	case ConfigRefreshedMsg:
		// The session already swapped the fresh configuration in.
		return m, nil

	case ConfigRefreshErrorMsg:
		if m.session.Snapshot().Configuration == nil {
			m.setError(fmt.Sprintf("Could not load configuration: %s", msg.Err))
		}
		return m, nil

	case ConfigRefreshCancelledMsg:
		return m, nil

	// Contact list messages
	case ContactsLoadedMsg:
		m.loadingList = false
		if msg.State == flow.StateGoogleContactsPicker {
			m.googleContacts = msg.Items
		} else {
			m.contacts = msg.Items
		}
		m.clampCursor()
		return m, nil

	case ContactsErrorMsg:
		m.loadingList = false
		m.setError(fmt.Sprintf("Could not load contacts: %s", msg.Err))
		return m, nil

	// Email messages
	case EmailsSentMsg:
		m.emailResults = msg.Results
		if msg.Err != nil {
			m.setError(msg.Err.Error())
		} else {
			m.emailInput.SetValue("")
			m.session.SetEmailText("")
		}
		return m, nil

	// Row action messages
	case RowActionDoneMsg:
		if msg.Err == nil ||
			errors.Is(msg.Err, invite.ErrInFlight) ||
			errors.Is(msg.Err, invite.ErrAlreadySucceeded) {
			m.clampCursor()
			return m, nil
		}
		// Failures recorded in the tracker render inline on the row; only
		// refusals that never reached it need the banner.
		if _, failed := m.orch.Tracker(msg.Source).FailureMessage(msg.Key); !failed {
			m.setError(msg.Err.Error())
		}
		return m, nil

	// People search messages
	case PeopleFoundMsg:
		if msg.Query == strings.TrimSpace(m.peopleInput.Value()) {
			m.people = msg.Items
			m.cursor = 0
		}
		return m, nil

	case PeopleSearchErrorMsg:
		m.setError(fmt.Sprintf("Search failed: %s", msg.Err))
		return m, nil

	// Feed messages
	case SuggestionsLoadedMsg:
		m.suggestions = msg.Items
		m.clampCursor()
		return m, nil

	case OutgoingLoadedMsg:
		m.outgoing = msg.Items
		return m, nil

	case ListErrorMsg:
		// Background feeds fail quietly; their sections render empty.
		return m, nil

	// Link messages
	case LinkFetchedMsg:
		// The session holds the link; rendering reads it from the snapshot.
		return m, nil

	case LinkErrorMsg:
		m.setError(fmt.Sprintf("Could not fetch invite link: %s", msg.Err))
		return m, nil

	// Event bus messages
	case InvitationSentMsg:
		// Another surface created an invitation; refetch the outgoing list
		// and re-arm the listener.
		return m, tea.Batch(
			loadOutgoingCmd(m.ctx, m.orch),
			listenForEventsCmd(m.ctx, m.feed),
		)
	}

	return m, nil
}

// handleKeyPress dispatches key input per flow state.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.feedSub.Unsubscribe()
		return m, tea.Quit
	}

	switch m.session.State() {
	case flow.StateEmailEntry:
		return m.handleEmailEntryKeys(msg)
	case flow.StateContactsPicker, flow.StateGoogleContactsPicker:
		return m.handlePickerKeys(msg)
	case flow.StateQRCode:
		return m.handleLinkKeys(msg)
	default:
		return m.handleMainKeys(msg)
	}
}

// handleMainKeys handles input on the main surface.
func (m Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchingPeople {
		return m.handlePeopleSearchKeys(msg)
	}

	switch msg.String() {
	case "esc", "backspace":
		if len(m.people) > 0 {
			// Leave the search results before leaving the surface.
			m.people = nil
			m.peopleInput.SetValue("")
			m.cursor = 0
			return m, nil
		}
		m.session.Back()
		if m.session.Dismissed() {
			m.feedSub.Unsubscribe()
			return m, tea.Quit
		}
		return m, nil

	case "e":
		m.session.EnterEmailEntry()
		m.emailInput.SetValue("")
		m.emailInput.Focus()
		m.emailResults = nil
		return m, textinput.Blink

	case "c":
		m.session.EnterContactsPicker()
		return m.openPicker(flow.StateContactsPicker)

	case "g":
		m.session.EnterGoogleContactsPicker()
		return m.openPicker(flow.StateGoogleContactsPicker)

	case "q":
		m.session.EnterQRCode()
		return m, fetchLinkCmd(m.ctx, m.session)

	case "r":
		return m, tea.Batch(
			refreshConfigCmd(m.ctx, m.session),
			loadSuggestionsCmd(m.ctx, m.orch),
			loadOutgoingCmd(m.ctx, m.orch),
		)

	case "/":
		m.searchingPeople = true
		m.peopleInput.SetValue("")
		m.peopleInput.Focus()
		m.people = nil
		m.cursor = 0
		return m, textinput.Blink

	case "up", "k":
		m.moveCursorUp()
		return m, nil

	case "down", "j":
		m.moveCursorDown()
		return m, nil

	case "enter":
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		if len(m.people) > 0 {
			return m, connectMemberCmd(m.ctx, m.orch, item)
		}
		return m, inviteSuggestionCmd(m.ctx, m.orch, item)

	case "x":
		if m.showError {
			m.clearError()
			return m, nil
		}
		if len(m.people) == 0 {
			if item, ok := m.selectedItem(); ok {
				return m, dismissSuggestionCmd(m.orch, item)
			}
		}
		return m, nil
	}

	return m, nil
}

// openPicker resets picker sub-state and starts the list load. The session
// state must already be switched.
func (m Model) openPicker(state flow.State) (tea.Model, tea.Cmd) {
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.cursor = 0
	m.loadingList = true
	return m, tea.Batch(textinput.Blink, loadContactsCmd(m.ctx, m.session, state))
}

// handlePeopleSearchKeys handles input while the member search is focused.
func (m Model) handlePeopleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchingPeople = false
		m.peopleInput.Blur()
		m.peopleInput.SetValue("")
		m.people = nil
		m.cursor = 0
		return m, nil

	case "enter":
		query := strings.TrimSpace(m.peopleInput.Value())
		if query == "" {
			return m, nil
		}
		m.searchingPeople = false
		m.peopleInput.Blur()
		return m, findPeopleCmd(m.ctx, m.orch, query)
	}

	var cmd tea.Cmd
	m.peopleInput, cmd = m.peopleInput.Update(msg)
	return m, cmd
}

// handleEmailEntryKeys handles input on the email compose surface.
func (m Model) handleEmailEntryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.emailInput.Blur()
		m.clearError()
		m.session.Back()
		return m, nil

	case "enter":
		addresses := splitAddresses(m.emailInput.Value())
		if len(addresses) == 0 {
			return m, nil
		}
		m.clearError()
		return m, sendEmailsCmd(m.ctx, m.orch, addresses)
	}

	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	m.session.SetEmailText(m.emailInput.Value())
	return m, cmd
}

// handlePickerKeys handles input on the contact picker surfaces.
func (m Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.clearError()
		m.session.Back()
		return m, nil

	case "up":
		m.moveCursorUp()
		return m, nil

	case "down":
		m.moveCursorDown()
		return m, nil

	case "enter":
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, inviteContactCmd(m.ctx, m.orch, m.session.State(), item)

	case "ctrl+r":
		m.loadingList = true
		return m, loadContactsCmd(m.ctx, m.session, m.session.State())
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		m.session.SetSearchText(m.searchInput.Value())
		m.cursor = 0
	}
	return m, cmd
}

// handleLinkKeys handles input on the link surface.
func (m Model) handleLinkKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.clearError()
		m.session.Back()
		return m, nil

	case "r":
		m.session.ClearLink()
		m.clearError()
		return m, fetchLinkCmd(m.ctx, m.session)
	}

	return m, nil
}

// splitAddresses breaks compose input into individual addresses on commas,
// semicolons, and whitespace.
func splitAddresses(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}
