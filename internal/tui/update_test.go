package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopwell/invitekit/internal/client"
	"github.com/loopwell/invitekit/internal/configstore"
	"github.com/loopwell/invitekit/internal/events"
	"github.com/loopwell/invitekit/internal/flow"
	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/internal/schema"
)

type stubBackend struct {
	mu          sync.Mutex
	createCalls []client.CreateInvitationRequest
	createErr   error
	linkCalls   int
	linkErr     error
	outgoing    []client.RemoteInvitation
	suggestions []client.Member
	members     []client.Member
}

func (b *stubBackend) CreateInvitation(_ context.Context, req client.CreateInvitationRequest) ([]client.InvitationEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createCalls = append(b.createCalls, req)
	if b.createErr != nil {
		return nil, b.createErr
	}
	return []client.InvitationEntry{{ID: "inv-1", Status: client.StatusCreated, ShortLink: "https://lw.example/r/abc"}}, nil
}

func (b *stubBackend) GenerateShareableLink(context.Context, client.ShareableLinkRequest) (*client.ShareableLink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linkCalls++
	if b.linkErr != nil {
		return nil, b.linkErr
	}
	return &client.ShareableLink{ID: "inv-link", ShortLink: "https://lw.example/r/xyz"}, nil
}

func (b *stubBackend) OutgoingInvitations(context.Context) ([]client.RemoteInvitation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outgoing, nil
}

func (b *stubBackend) IncomingInvitations(context.Context) ([]client.RemoteInvitation, error) {
	return nil, nil
}

func (b *stubBackend) AcceptInvitation(context.Context, string) error { return nil }

func (b *stubBackend) RevokeInvitation(context.Context, string) error { return nil }

func (b *stubBackend) DeleteIncomingInvitation(context.Context, string) error { return nil }

func (b *stubBackend) SearchMembers(context.Context, string) ([]client.Member, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.members, nil
}

func (b *stubBackend) Suggestions(context.Context) ([]client.Member, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.suggestions, nil
}

func (b *stubBackend) createCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.createCalls)
}

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
	props map[string]schema.Prop
}

func (f *stubFetcher) WidgetConfiguration(_ context.Context, componentID, _ string) (*schema.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	props := f.props
	if props == nil {
		props = map[string]schema.Prop{}
	}
	return &schema.Envelope{
		Configuration: &schema.Configuration{ID: componentID, Props: props},
		DeploymentID:  "deploy-1",
	}, nil
}

func newTestModel(t *testing.T, backend *stubBackend) Model {
	t.Helper()
	return newTestModelWithFetcher(t, backend, &stubFetcher{})
}

func newTestModelWithFetcher(t *testing.T, backend *stubBackend, fetcher *stubFetcher) Model {
	t.Helper()

	bus := events.NewBus(nil)
	orch, err := invite.NewOrchestrator(invite.Config{
		Backend:               backend,
		WidgetConfigurationID: "widget-123",
		Bus:                   bus,
	})
	require.NoError(t, err)

	session, err := flow.NewSession(flow.Config{
		ComponentID:  "invite_main",
		Store:        configstore.New(),
		Fetcher:      fetcher,
		Orchestrator: orch,
	})
	require.NoError(t, err)

	return NewModel(context.Background(), session, bus)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func asModel(t *testing.T, m tea.Model) Model {
	t.Helper()
	model, ok := m.(Model)
	require.True(t, ok)
	return model
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated := asModel(t, newModel)

	assert.Equal(t, 100, updated.width)
	assert.Equal(t, 40, updated.height)
	assert.False(t, updated.showError)
}

func TestUpdate_WindowSizeMsg_TooSmall(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	updated := asModel(t, newModel)

	assert.True(t, updated.showError, "should show error for small terminal")
	assert.Contains(t, updated.errorMsg, "Terminal too small")

	// Growing the terminal clears the size error.
	newModel, _ = updated.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated = asModel(t, newModel)
	assert.False(t, updated.showError)
}

func TestUpdate_SpinnerTickMsg(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	newModel, cmd := m.Update(spinner.TickMsg{})
	asModel(t, newModel)
	assert.NotNil(t, cmd)
}

func TestUpdate_ContactsLoadedMsg(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.loadingList = true

	items := []invite.ListItem{{DisplayName: "Ada", Email: "ada@example.com"}}

	newModel, _ := m.Update(ContactsLoadedMsg{State: flow.StateContactsPicker, Items: items})
	updated := asModel(t, newModel)
	assert.False(t, updated.loadingList)
	assert.Equal(t, items, updated.contacts)
	assert.Empty(t, updated.googleContacts)

	newModel, _ = updated.Update(ContactsLoadedMsg{State: flow.StateGoogleContactsPicker, Items: items})
	updated = asModel(t, newModel)
	assert.Equal(t, items, updated.googleContacts)
}

func TestUpdate_ContactsErrorMsg(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.loadingList = true

	newModel, _ := m.Update(ContactsErrorMsg{State: flow.StateContactsPicker, Err: assert.AnError})
	updated := asModel(t, newModel)

	assert.False(t, updated.loadingList)
	assert.True(t, updated.showError)
	assert.Contains(t, updated.errorMsg, "Could not load contacts")
}

func TestUpdate_EmailsSentMsg_Success(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.emailInput.SetValue("ada@example.com")

	results := []invite.EmailResult{{Address: "ada@example.com"}}
	newModel, _ := m.Update(EmailsSentMsg{Results: results})
	updated := asModel(t, newModel)

	assert.Equal(t, results, updated.emailResults)
	assert.Empty(t, updated.emailInput.Value(), "input clears after a clean send")
	assert.False(t, updated.showError)
}

func TestUpdate_EmailsSentMsg_PartialFailure(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.emailInput.SetValue("ada@example.com, bad")

	results := []invite.EmailResult{
		{Address: "ada@example.com"},
		{Address: "bad", Err: assert.AnError},
	}
	newModel, _ := m.Update(EmailsSentMsg{Results: results, Err: assert.AnError})
	updated := asModel(t, newModel)

	assert.True(t, updated.showError)
	assert.Equal(t, "ada@example.com, bad", updated.emailInput.Value(), "input survives a failed send")
}

func TestUpdate_RowActionDoneMsg(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	// A refusal that never reached the tracker lands in the banner.
	newModel, _ := m.Update(RowActionDoneMsg{Source: invite.SourceOther, Key: "m1", Err: invite.ErrVetoed})
	updated := asModel(t, newModel)
	assert.True(t, updated.showError)
	assert.Contains(t, updated.errorMsg, "vetoed")

	// A failure already recorded on the row renders inline, not as a banner.
	updated.clearError()
	updated.orch.Tracker(invite.SourceOther).Fail("m2", "timeout")
	newModel, _ = updated.Update(RowActionDoneMsg{Source: invite.SourceOther, Key: "m2", Err: assert.AnError})
	updated = asModel(t, newModel)
	assert.False(t, updated.showError)

	// Duplicate attempts are silent.
	newModel, _ = updated.Update(RowActionDoneMsg{Source: invite.SourceOther, Key: "m3", Err: invite.ErrAlreadySucceeded})
	updated = asModel(t, newModel)
	assert.False(t, updated.showError)
}

func TestUpdate_PeopleFoundMsg_StaleQueryDropped(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.peopleInput.SetValue("grace")

	newModel, _ := m.Update(PeopleFoundMsg{Query: "ada", Items: []invite.ListItem{{ID: "m1"}}})
	updated := asModel(t, newModel)
	assert.Empty(t, updated.people, "results for an outdated query are dropped")

	newModel, _ = updated.Update(PeopleFoundMsg{Query: "grace", Items: []invite.ListItem{{ID: "m2"}}})
	updated = asModel(t, newModel)
	require.Len(t, updated.people, 1)
	assert.Equal(t, "m2", updated.people[0].ID)
}

func TestUpdate_SuggestionsLoadedMsg_ClampsCursor(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.suggestions = []invite.ListItem{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}
	m.cursor = 2

	newModel, _ := m.Update(SuggestionsLoadedMsg{Items: []invite.ListItem{{ID: "m1"}}})
	updated := asModel(t, newModel)

	assert.Equal(t, 0, updated.cursor)
	assert.Len(t, updated.suggestions, 1)
}

func TestUpdate_ConfigRefreshErrorMsg(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	// Nothing renderable yet, so the failure surfaces.
	newModel, _ := m.Update(ConfigRefreshErrorMsg{Err: assert.AnError})
	updated := asModel(t, newModel)
	assert.True(t, updated.showError)

	// With a configuration on screen the failure stays quiet.
	require.NoError(t, updated.session.Refresh(context.Background()))
	updated.clearError()
	newModel, _ = updated.Update(ConfigRefreshErrorMsg{Err: assert.AnError})
	updated = asModel(t, newModel)
	assert.False(t, updated.showError)
}

func TestUpdate_LinkErrorMsg(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	newModel, _ := m.Update(LinkErrorMsg{Err: assert.AnError})
	updated := asModel(t, newModel)

	assert.True(t, updated.showError)
	assert.Contains(t, updated.errorMsg, "invite link")
}

func TestUpdate_InvitationSentMsg_RearmsListener(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	newModel, cmd := m.Update(InvitationSentMsg{Event: events.InvitationSent{Source: invite.SourceLink}})
	asModel(t, newModel)
	assert.NotNil(t, cmd, "should refetch the outgoing list and keep listening")
}

func TestUpdate_KeyMsg_OpensSurfaces(t *testing.T) {
	tests := []struct {
		key  string
		want flow.State
	}{
		{"e", flow.StateEmailEntry},
		{"c", flow.StateContactsPicker},
		{"g", flow.StateGoogleContactsPicker},
		{"q", flow.StateQRCode},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := newTestModel(t, &stubBackend{})
			newModel, _ := m.Update(keyRunes(tt.key))
			updated := asModel(t, newModel)
			assert.Equal(t, tt.want, updated.session.State())
		})
	}
}

func TestUpdate_KeyMsg_EscReturnsToMain(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.session.EnterEmailEntry()

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated := asModel(t, newModel)

	assert.Equal(t, flow.StateMain, updated.session.State())
	assert.False(t, updated.session.Dismissed())
}

func TestUpdate_KeyMsg_EscFromMainDismisses(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated := asModel(t, newModel)

	assert.True(t, updated.session.Dismissed())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_KeyMsg_CtrlCQuits(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_KeyMsg_EnterSendsEmails(t *testing.T) {
	backend := &stubBackend{}
	m := newTestModel(t, backend)

	newModel, _ := m.Update(keyRunes("e"))
	updated := asModel(t, newModel)
	updated.emailInput.SetValue("ada@example.com grace@example.com")

	newModel, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated = asModel(t, newModel)
	require.NotNil(t, cmd)

	msg := cmd()
	sent, ok := msg.(EmailsSentMsg)
	require.True(t, ok)
	require.NoError(t, sent.Err)
	require.Len(t, sent.Results, 2)
	assert.Equal(t, 2, backend.createCount())

	tracker := updated.orch.Tracker(invite.SourceEmail)
	_, succeeded := tracker.Succeeded("ada@example.com")
	assert.True(t, succeeded)
}

func TestUpdate_KeyMsg_EnterWithoutAddressesIsNoop(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.session.EnterEmailEntry()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestUpdate_KeyMsg_PickerInviteSelection(t *testing.T) {
	backend := &stubBackend{}
	m := newTestModel(t, backend)
	m.session.EnterContactsPicker()
	m.contacts = []invite.ListItem{
		{DisplayName: "Ada Lovelace", Email: "ada@example.com"},
		{DisplayName: "Grace Hopper", Email: "grace@example.com"},
	}

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated := asModel(t, newModel)
	assert.Equal(t, 1, updated.cursor)

	newModel, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated = asModel(t, newModel)
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(RowActionDoneMsg)
	require.True(t, ok)
	assert.Equal(t, invite.SourceContacts, done.Source)
	assert.Equal(t, "grace@example.com", done.Key)
	require.NoError(t, done.Err)

	require.Equal(t, 1, backend.createCount())
	assert.Equal(t, invite.SourceContacts, backend.createCalls[0].Source)
}

func TestUpdate_KeyMsg_PickerTypingFilters(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.session.EnterContactsPicker()
	m.searchInput.Focus()
	m.contacts = []invite.ListItem{
		{DisplayName: "Ada Lovelace", Email: "ada@example.com"},
		{DisplayName: "Grace Hopper", Email: "grace@example.com"},
	}
	m.cursor = 1

	newModel, _ := m.Update(keyRunes("ada"))
	updated := asModel(t, newModel)

	assert.Equal(t, "ada", updated.searchInput.Value())
	assert.Equal(t, 0, updated.cursor, "typing resets the selection")
	assert.Equal(t, "ada", updated.session.Snapshot().SearchText)

	items := updated.currentList()
	require.Len(t, items, 1)
	assert.Equal(t, "Ada Lovelace", items[0].DisplayName)
}

func TestUpdate_KeyMsg_ListNavigationWraps(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.suggestions = []invite.ListItem{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}

	newModel, _ := m.Update(keyRunes("k"))
	updated := asModel(t, newModel)
	assert.Equal(t, 2, updated.cursor, "up from the top wraps to the bottom")

	newModel, _ = updated.Update(keyRunes("j"))
	updated = asModel(t, newModel)
	assert.Equal(t, 0, updated.cursor)
}

func TestUpdate_KeyMsg_EnterInvitesSuggestion(t *testing.T) {
	backend := &stubBackend{}
	m := newTestModel(t, backend)
	m.suggestions = []invite.ListItem{{ID: "m1", DisplayName: "Ada"}}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(RowActionDoneMsg)
	require.True(t, ok)
	assert.Equal(t, invite.SourceOther, done.Source)
	assert.Equal(t, "m1", done.Key)
	require.NoError(t, done.Err)
	assert.Equal(t, 1, backend.createCount())
}

func TestUpdate_KeyMsg_DismissSuggestion(t *testing.T) {
	backend := &stubBackend{}
	m := newTestModel(t, backend)
	m.suggestions = []invite.ListItem{{ID: "m1", DisplayName: "Ada"}}

	newModel, cmd := m.Update(keyRunes("x"))
	updated := asModel(t, newModel)
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(RowActionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)

	kind, ok := updated.orch.Tracker(invite.SourceOther).Succeeded("m1")
	require.True(t, ok)
	assert.Equal(t, invite.SuccessDismissed, kind)
	assert.Equal(t, 0, backend.createCount(), "dismissal never reaches the backend")
	assert.Empty(t, updated.visibleSuggestions())
}

func TestUpdate_KeyMsg_PeopleSearchFlow(t *testing.T) {
	backend := &stubBackend{members: []client.Member{{InternalID: "m9", DisplayName: "Linus"}}}
	m := newTestModel(t, backend)

	newModel, _ := m.Update(keyRunes("/"))
	updated := asModel(t, newModel)
	assert.True(t, updated.searchingPeople)

	newModel, _ = updated.Update(keyRunes("linus"))
	updated = asModel(t, newModel)
	assert.Equal(t, "linus", updated.peopleInput.Value())

	newModel, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated = asModel(t, newModel)
	assert.False(t, updated.searchingPeople)
	require.NotNil(t, cmd)

	msg := cmd()
	found, ok := msg.(PeopleFoundMsg)
	require.True(t, ok)
	assert.Equal(t, "linus", found.Query)
	require.Len(t, found.Items, 1)

	newModel, _ = updated.Update(found)
	updated = asModel(t, newModel)
	require.Len(t, updated.people, 1)

	// Enter on a result connects instead of inviting.
	_, cmd = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	done, ok := cmd().(RowActionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.Equal(t, "m9", done.Key)

	kind, ok := updated.orch.Tracker(invite.SourceOther).Succeeded("m9")
	require.True(t, ok)
	assert.Equal(t, invite.SuccessConnected, kind)
}

func TestUpdate_KeyMsg_EscLeavesSearchResultsBeforeDismissing(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.people = []invite.ListItem{{ID: "m1"}}

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated := asModel(t, newModel)

	assert.Empty(t, updated.people)
	assert.False(t, updated.session.Dismissed())
}

func TestUpdate_KeyMsg_LinkRegenerate(t *testing.T) {
	backend := &stubBackend{}
	m := newTestModel(t, backend)

	newModel, cmd := m.Update(keyRunes("q"))
	updated := asModel(t, newModel)
	require.NotNil(t, cmd)

	msg := cmd()
	fetched, ok := msg.(LinkFetchedMsg)
	require.True(t, ok)
	assert.Equal(t, "https://lw.example/r/xyz", fetched.Link.ShortLink)

	// r clears the session link and fetches a fresh one.
	newModel, cmd = updated.Update(keyRunes("r"))
	updated = asModel(t, newModel)
	require.NotNil(t, cmd)
	assert.Nil(t, updated.session.Snapshot().Link)

	_, ok = cmd().(LinkFetchedMsg)
	require.True(t, ok)
	assert.Equal(t, 2, backend.linkCalls)
}

func TestUpdate_KeyMsg_RefreshFromMain(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	_, cmd := m.Update(keyRunes("r"))
	require.NotNil(t, cmd)
}

func TestSplitAddresses(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"ada@example.com", []string{"ada@example.com"}},
		{"ada@example.com, grace@example.com", []string{"ada@example.com", "grace@example.com"}},
		{"a@x.com; b@y.com  c@z.com", []string{"a@x.com", "b@y.com", "c@z.com"}},
		{"  ,, ;  ", nil},
	}

	for _, tt := range tests {
		got := splitAddresses(tt.raw)
		if len(tt.want) == 0 {
			assert.Empty(t, got, "raw=%q", tt.raw)
			continue
		}
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestListenForEventsCmd_DeliversEvent(t *testing.T) {
	feed := make(chan events.InvitationSent, 1)
	feed <- events.InvitationSent{Source: invite.SourceEmail, ShortLink: "https://lw.example/r/abc"}

	msg := listenForEventsCmd(context.Background(), feed)()
	delivered, ok := msg.(InvitationSentMsg)
	require.True(t, ok)
	assert.Equal(t, invite.SourceEmail, delivered.Event.Source)
}

func TestListenForEventsCmd_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := listenForEventsCmd(ctx, make(chan events.InvitationSent))()
	assert.Nil(t, msg)
}

type unknownMsg struct{}

func TestUpdate_UnknownMsgIsNoop(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	newModel, cmd := m.Update(unknownMsg{})
	asModel(t, newModel)
	assert.Nil(t, cmd)
}
