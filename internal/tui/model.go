// Package tui is the reference terminal host. It renders the
// server-authored element tree with lipgloss, maps key presses onto the
// flow session's states, and dispatches invitation actions through the
// orchestrator, all without blocking the update loop.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopwell/invitekit/internal/events"
	"github.com/loopwell/invitekit/internal/flow"
	"github.com/loopwell/invitekit/internal/invite"
)

// Model is the interactive invitation surface.
type Model struct {
	// Core wiring
	ctx     context.Context
	session *flow.Session
	orch    *invite.Orchestrator

	// Event feed
	feed    <-chan events.InvitationSent
	feedSub events.Subscription

	// UI state
	cursor          int
	searchingPeople bool
	loadingList     bool
	showError       bool
	errorMsg        string

	// Component state
	spinner     spinner.Model
	emailInput  textinput.Model
	searchInput textinput.Model
	peopleInput textinput.Model

	// Surface data
	suggestions    []invite.ListItem
	people         []invite.ListItem
	outgoing       []invite.ListItem
	contacts       []invite.ListItem
	googleContacts []invite.ListItem
	emailResults   []invite.EmailResult

	// Dimensions
	width  int
	height int
}

// NewModel creates the host model around a flow session. The cached
// configuration, if any, is exposed synchronously so the first frame can
// render it; the live refresh starts from Init.
func NewModel(ctx context.Context, session *flow.Session, bus *events.Bus) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	email := textinput.New()
	email.Placeholder = "friend@example.com, another@example.com"
	email.CharLimit = 256
	email.Width = 48

	search := textinput.New()
	search.Placeholder = "Type to filter"
	search.CharLimit = 64
	search.Width = 32

	people := textinput.New()
	people.Placeholder = "Search people"
	people.CharLimit = 64
	people.Width = 32

	feed, sub := bus.Feed()

	session.LoadCached()

	return Model{
		ctx:         ctx,
		session:     session,
		orch:        session.Orchestrator(),
		feed:        feed,
		feedSub:     sub,
		spinner:     s,
		emailInput:  email,
		searchInput: search,
		peopleInput: people,
		width:       80,
		height:      24,
	}
}

// Init starts the background work: the live configuration refresh, the
// suggestion and outgoing feeds, and the bus listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		refreshConfigCmd(m.ctx, m.session),
		loadSuggestionsCmd(m.ctx, m.orch),
		loadOutgoingCmd(m.ctx, m.orch),
		listenForEventsCmd(m.ctx, m.feed),
	)
}

// Helper Methods

// currentList returns the rows the cursor moves over in the active state.
func (m *Model) currentList() []invite.ListItem {
	switch m.session.State() {
	case flow.StateContactsPicker:
		return filterItems(m.contacts, m.searchInput.Value())
	case flow.StateGoogleContactsPicker:
		return filterItems(m.googleContacts, m.searchInput.Value())
	case flow.StateMain:
		if len(m.people) > 0 {
			return m.people
		}
		return m.visibleSuggestions()
	default:
		return nil
	}
}

// visibleSuggestions returns the suggestion feed minus rows the user
// dismissed this session.
func (m *Model) visibleSuggestions() []invite.ListItem {
	tracker := m.orch.Tracker(invite.SourceOther)
	visible := make([]invite.ListItem, 0, len(m.suggestions))
	for _, item := range m.suggestions {
		if kind, ok := tracker.Succeeded(item.Key()); ok && kind == invite.SuccessDismissed {
			continue
		}
		visible = append(visible, item)
	}
	return visible
}

// selectedItem returns the row under the cursor.
func (m *Model) selectedItem() (invite.ListItem, bool) {
	items := m.currentList()
	if m.cursor < 0 || m.cursor >= len(items) {
		return invite.ListItem{}, false
	}
	return items[m.cursor], true
}

// moveCursorUp moves the cursor up with wrapping.
func (m *Model) moveCursorUp() {
	items := m.currentList()
	if len(items) == 0 {
		return
	}
	m.cursor--
	if m.cursor < 0 {
		m.cursor = len(items) - 1
	}
}

// moveCursorDown moves the cursor down with wrapping.
func (m *Model) moveCursorDown() {
	items := m.currentList()
	if len(items) == 0 {
		return
	}
	m.cursor++
	if m.cursor >= len(items) {
		m.cursor = 0
	}
}

// clampCursor keeps the cursor inside the active list after it changes.
func (m *Model) clampCursor() {
	items := m.currentList()
	if len(items) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// setError shows the error banner.
func (m *Model) setError(msg string) {
	m.showError = true
	m.errorMsg = msg
}

// clearError hides the error banner.
func (m *Model) clearError() {
	m.showError = false
	m.errorMsg = ""
}

// filterItems narrows a contact list by a case-insensitive substring match
// on name, subtitle, and email. An empty query matches everything.
func filterItems(items []invite.ListItem, query string) []invite.ListItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	matched := make([]invite.ListItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.DisplayName), query) ||
			strings.Contains(strings.ToLower(item.Subtitle), query) ||
			strings.Contains(strings.ToLower(item.Email), query) {
			matched = append(matched, item)
		}
	}
	return matched
}
