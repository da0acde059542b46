package invite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopwell/invitekit/internal/client"
	"github.com/loopwell/invitekit/internal/events"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

type createResult struct {
	entries []client.InvitationEntry
	err     error
}

// fakeBackend records every call and lets tests script create outcomes.
// When the queue is empty, creates succeed with a synthetic entry.
type fakeBackend struct {
	mu          sync.Mutex
	createCalls []client.CreateInvitationRequest
	createQueue []createResult

	linkReqs []client.ShareableLinkRequest
	link     client.ShareableLink
	linkErr  error

	outgoing []client.RemoteInvitation
	incoming []client.RemoteInvitation
	listErr  error

	acceptedIDs []string
	revokedIDs  []string
	deletedIDs  []string
	manageErr   error

	searchQueries    []string
	suggestionsCalls int
	members          []client.Member
	memberErr        error
}

func (f *fakeBackend) CreateInvitation(_ context.Context, req client.CreateInvitationRequest) ([]client.InvitationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls = append(f.createCalls, req)
	if len(f.createQueue) > 0 {
		next := f.createQueue[0]
		f.createQueue = f.createQueue[1:]
		return next.entries, next.err
	}
	return []client.InvitationEntry{{ID: "inv-1", Status: client.StatusCreated, ShortLink: "https://lw.example/r/abc"}}, nil
}

func (f *fakeBackend) GenerateShareableLink(_ context.Context, req client.ShareableLinkRequest) (*client.ShareableLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.linkReqs = append(f.linkReqs, req)
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	link := f.link
	return &link, nil
}

func (f *fakeBackend) OutgoingInvitations(context.Context) ([]client.RemoteInvitation, error) {
	return f.outgoing, f.listErr
}

func (f *fakeBackend) IncomingInvitations(context.Context) ([]client.RemoteInvitation, error) {
	return f.incoming, f.listErr
}

func (f *fakeBackend) AcceptInvitation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.manageErr != nil {
		return f.manageErr
	}
	f.acceptedIDs = append(f.acceptedIDs, id)
	return nil
}

func (f *fakeBackend) RevokeInvitation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.manageErr != nil {
		return f.manageErr
	}
	f.revokedIDs = append(f.revokedIDs, id)
	return nil
}

func (f *fakeBackend) DeleteIncomingInvitation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.manageErr != nil {
		return f.manageErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeBackend) SearchMembers(_ context.Context, query string) ([]client.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchQueries = append(f.searchQueries, query)
	return f.members, f.memberErr
}

func (f *fakeBackend) Suggestions(context.Context) ([]client.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestionsCalls++
	return f.members, f.memberErr
}

func testOrchestrator(t *testing.T, backend Backend, callbacks *Callbacks) (*Orchestrator, *events.Bus) {
	t.Helper()

	bus := events.NewBus(nil)
	orch, err := NewOrchestrator(Config{
		Backend:               backend,
		WidgetConfigurationID: "widget-123",
		Group:                 "friends",
		Bus:                   bus,
		Callbacks:             callbacks,
	})
	require.NoError(t, err)
	return orch, bus
}

func collectEvents(bus *events.Bus) *[]events.InvitationSent {
	seen := &[]events.InvitationSent{}
	bus.Subscribe(func(_ context.Context, event events.InvitationSent) error {
		*seen = append(*seen, event)
		return nil
	})
	return seen
}

func TestNewOrchestratorRequiresWiring(t *testing.T) {
	t.Parallel()

	var validationErr *apierrors.ValidationError

	_, err := NewOrchestrator(Config{WidgetConfigurationID: "widget-123"})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "backend", validationErr.Field)

	_, err = NewOrchestrator(Config{Backend: &fakeBackend{}})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "widgetConfigurationId", validationErr.Field)
}

func TestInviteEmailsDispatchesAndPublishes(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	var created []client.InvitationEntry
	callbacks := &Callbacks{
		OnInvitationCreated: func(entry client.InvitationEntry) { created = append(created, entry) },
	}
	orch, bus := testOrchestrator(t, backend, callbacks)
	seen := collectEvents(bus)

	results, err := orch.InviteEmails(context.Background(), []string{"a@example.com"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a@example.com", results[0].Address)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Entry.Succeeded())

	require.Len(t, backend.createCalls, 1)
	req := backend.createCalls[0]
	assert.Equal(t, "widget-123", req.WidgetConfigurationID)
	assert.Equal(t, SourceEmail, req.Source)
	assert.Equal(t, "friends", req.Group)
	assert.JSONEq(t, `{"invitee_email": {"value": "a@example.com", "type": "email"}}`, marshalPayload(t, req.Payload))

	kind, ok := orch.Tracker(SourceEmail).Succeeded("a@example.com")
	require.True(t, ok)
	assert.Equal(t, SuccessInvited, kind)

	require.Len(t, *seen, 1)
	assert.Equal(t, SourceEmail, (*seen)[0].Source)
	assert.Equal(t, "https://lw.example/r/abc", (*seen)[0].ShortLink)
	assert.False(t, (*seen)[0].Timestamp.IsZero())

	require.Len(t, created, 1)
	assert.Equal(t, "inv-1", created[0].ID)
}

func TestInviteEmailsContinuesPastFailures(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	results, err := orch.InviteEmails(context.Background(), []string{"not-an-email", "b@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	require.Len(t, results, 2)

	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, results[0].Err, &validationErr)
	require.NoError(t, results[1].Err)

	// Only the valid address reached the backend; its success stands.
	require.Len(t, backend.createCalls, 1)
	_, ok := orch.Tracker(SourceEmail).Succeeded("b@example.com")
	assert.True(t, ok)
}

func TestInviteEmailsRefusesResendingSuccess(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	_, err := orch.InviteEmails(context.Background(), []string{"a@example.com"})
	require.NoError(t, err)

	results, err := orch.InviteEmails(context.Background(), []string{"a@example.com"})
	require.Error(t, err)
	require.ErrorIs(t, results[0].Err, ErrAlreadySucceeded)
	assert.Len(t, backend.createCalls, 1)
}

func TestFailedInviteCanRetryInPlace(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{createQueue: []createResult{
		{err: apierrors.NewTransportError("create-invitation", errors.New("timeout"))},
	}}
	var failedSources []string
	callbacks := &Callbacks{
		OnInvitationFailed: func(source string, _ error) { failedSources = append(failedSources, source) },
	}
	orch, _ := testOrchestrator(t, backend, callbacks)

	_, err := orch.InviteEmails(context.Background(), []string{"a@example.com"})
	require.Error(t, err)

	message, failed := orch.Tracker(SourceEmail).FailureMessage("a@example.com")
	require.True(t, failed)
	assert.Contains(t, message, "timeout")
	assert.Equal(t, []string{SourceEmail}, failedSources)

	// Queue exhausted: the retry takes the default success path.
	results, err := orch.InviteEmails(context.Background(), []string{"a@example.com"})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	_, ok := orch.Tracker(SourceEmail).Succeeded("a@example.com")
	assert.True(t, ok)
	assert.Len(t, backend.createCalls, 2)
}

func TestRejectedEntryMarksFailure(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{createQueue: []createResult{
		{entries: []client.InvitationEntry{{ID: "inv-1", Status: client.StatusFailed}}},
	}}
	orch, bus := testOrchestrator(t, backend, nil)
	seen := collectEvents(bus)

	_, err := orch.InviteContact(context.Background(), ListItem{Email: "a@example.com", DisplayName: "Ada"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")

	_, failed := orch.Tracker(SourceContacts).FailureMessage("a@example.com")
	assert.True(t, failed)
	assert.Empty(t, *seen)
}

func TestDuplicateEntryCountsAsSuccess(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{createQueue: []createResult{
		{entries: []client.InvitationEntry{{ID: "inv-1", Status: client.StatusDuplicate}}},
	}}
	orch, _ := testOrchestrator(t, backend, nil)

	entry, err := orch.InviteContact(context.Background(), ListItem{Email: "a@example.com"})
	require.NoError(t, err)
	assert.True(t, entry.Succeeded())

	_, ok := orch.Tracker(SourceContacts).Succeeded("a@example.com")
	assert.True(t, ok)
}

func TestHostVetoBlocksDispatch(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	callbacks := &Callbacks{OnInvite: func(ListItem) bool { return false }}
	orch, _ := testOrchestrator(t, backend, callbacks)

	_, err := orch.InviteContact(context.Background(), ListItem{Email: "a@example.com"})
	require.ErrorIs(t, err, ErrVetoed)
	assert.Empty(t, backend.createCalls)
	assert.False(t, orch.Tracker(SourceContacts).IsLoading("a@example.com"))
}

func TestGoogleContactUsesGoogleSource(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	_, err := orch.InviteGoogleContact(context.Background(), ListItem{Email: "g@example.com", DisplayName: "Greta"})
	require.NoError(t, err)

	require.Len(t, backend.createCalls, 1)
	assert.Equal(t, SourceGoogle, backend.createCalls[0].Source)
}

func TestConnectMemberUsesInternalPayload(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	entry, err := orch.ConnectMember(context.Background(), ListItem{ID: "member-42", DisplayName: "Grace"})
	require.NoError(t, err)
	assert.True(t, entry.Succeeded())

	require.Len(t, backend.createCalls, 1)
	req := backend.createCalls[0]
	assert.Equal(t, SourceOther, req.Source)
	assert.JSONEq(t, `{"member-42": {"type": "internal", "value": {"value": "member-42", "name": "Grace"}}}`, marshalPayload(t, req.Payload))

	kind, ok := orch.Tracker(SourceOther).Succeeded("member-42")
	require.True(t, ok)
	assert.Equal(t, SuccessConnected, kind)

	// Suggestions share the tracker, so the same member cannot be invited
	// again from the feed.
	_, err = orch.InviteSuggestion(context.Background(), ListItem{ID: "member-42", DisplayName: "Grace"})
	require.ErrorIs(t, err, ErrAlreadySucceeded)
	assert.Len(t, backend.createCalls, 1)
}

func TestConnectMemberRequiresInternalID(t *testing.T) {
	t.Parallel()

	orch, _ := testOrchestrator(t, &fakeBackend{}, nil)

	var validationErr *apierrors.ValidationError
	_, err := orch.ConnectMember(context.Background(), ListItem{DisplayName: "Grace"})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "internalId", validationErr.Field)
}

func TestDismissSuggestionIsLocal(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, bus := testOrchestrator(t, backend, nil)
	seen := collectEvents(bus)

	require.NoError(t, orch.DismissSuggestion(ListItem{ID: "member-9"}))

	assert.Empty(t, backend.createCalls)
	assert.Empty(t, *seen)
	kind, ok := orch.Tracker(SourceOther).Succeeded("member-9")
	require.True(t, ok)
	assert.Equal(t, SuccessDismissed, kind)

	require.ErrorIs(t, orch.DismissSuggestion(ListItem{ID: "member-9"}), ErrAlreadySucceeded)
}

func TestInviteSMS(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	_, err := orch.InviteSMS(context.Background(), "+15551234567", "Lin")
	require.NoError(t, err)

	require.Len(t, backend.createCalls, 1)
	req := backend.createCalls[0]
	assert.Equal(t, SourceSMS, req.Source)
	assert.JSONEq(t, `{"smsTarget": {"type": "sms", "value": [{"value": "+15551234567", "name": "Lin"}]}}`, marshalPayload(t, req.Payload))

	_, err = orch.InviteSMS(context.Background(), "555", "")
	require.Error(t, err)
	assert.Len(t, backend.createCalls, 1)
}

func TestGenerateShareableLinkPublishesLinkEvent(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{link: client.ShareableLink{ID: "inv-link", ShortLink: "https://lw.example/r/xyz"}}
	var created []client.InvitationEntry
	callbacks := &Callbacks{
		OnInvitationCreated: func(entry client.InvitationEntry) { created = append(created, entry) },
	}
	orch, bus := testOrchestrator(t, backend, callbacks)
	seen := collectEvents(bus)

	link, err := orch.GenerateShareableLink(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://lw.example/r/xyz", link.ShortLink)

	require.Len(t, backend.linkReqs, 1)
	assert.Equal(t, "widget-123", backend.linkReqs[0].WidgetConfigurationID)
	assert.Equal(t, "friends", backend.linkReqs[0].Group)

	require.Len(t, *seen, 1)
	assert.Equal(t, SourceLink, (*seen)[0].Source)
	assert.Equal(t, "https://lw.example/r/xyz", (*seen)[0].ShortLink)

	require.Len(t, created, 1)
	assert.Equal(t, client.StatusCreated, created[0].Status)
	assert.Equal(t, "inv-link", created[0].ID)
}

func TestGenerateShareableLinkFailureNotifiesHost(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{linkErr: apierrors.NewHTTPStatusError("generate-shareable-link", 500, "boom")}
	var failedSources []string
	callbacks := &Callbacks{
		OnInvitationFailed: func(source string, _ error) { failedSources = append(failedSources, source) },
	}
	orch, bus := testOrchestrator(t, backend, callbacks)
	seen := collectEvents(bus)

	_, err := orch.GenerateShareableLink(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{SourceLink}, failedSources)
	assert.Empty(t, *seen)
}

func TestAcceptThenDeleteSameInvitationRefused(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	require.NoError(t, orch.AcceptInvitation(context.Background(), "inv-3"))
	assert.Equal(t, []string{"inv-3"}, backend.acceptedIDs)

	kind, ok := orch.Tracker(SurfaceIncoming).Succeeded("inv-3")
	require.True(t, ok)
	assert.Equal(t, SuccessAccepted, kind)

	err := orch.DeleteIncomingInvitation(context.Background(), "inv-3")
	require.ErrorIs(t, err, ErrAlreadySucceeded)
	assert.Empty(t, backend.deletedIDs)
}

func TestRevokeInvitationSucceeds(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, bus := testOrchestrator(t, backend, nil)
	seen := collectEvents(bus)

	require.NoError(t, orch.RevokeInvitation(context.Background(), "inv-5"))
	assert.Equal(t, []string{"inv-5"}, backend.revokedIDs)

	kind, ok := orch.Tracker(SurfaceOutgoing).Succeeded("inv-5")
	require.True(t, ok)
	assert.Equal(t, SuccessRevoked, kind)
	assert.Empty(t, *seen)
}

func TestRevokeHonorsCancelGate(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	callbacks := &Callbacks{OnCancel: func(string) bool { return false }}
	orch, _ := testOrchestrator(t, backend, callbacks)

	err := orch.RevokeInvitation(context.Background(), "inv-5")
	require.ErrorIs(t, err, ErrVetoed)
	assert.Empty(t, backend.revokedIDs)
}

func TestManagementFailureIsRetryable(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{manageErr: apierrors.NewHTTPStatusError("accept-invitation", 500, "boom")}
	orch, _ := testOrchestrator(t, backend, nil)

	require.Error(t, orch.AcceptInvitation(context.Background(), "inv-3"))
	_, failed := orch.Tracker(SurfaceIncoming).FailureMessage("inv-3")
	assert.True(t, failed)

	backend.manageErr = nil
	require.NoError(t, orch.AcceptInvitation(context.Background(), "inv-3"))
}

func TestInvitationListsConvertRows(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		outgoing: []client.RemoteInvitation{{ID: "out-1", DisplayName: "Ada"}},
		incoming: []client.RemoteInvitation{{ID: "in-1", DisplayName: "Grace"}},
	}
	orch, _ := testOrchestrator(t, backend, nil)

	out, err := orch.OutgoingInvitations(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "out-1", out[0].ID)
	assert.Equal(t, OriginBackend, out[0].Origin)

	in, err := orch.IncomingInvitations(context.Background())
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "in-1", in[0].ID)
}

func TestFindFriendsSkipsEmptyQuery(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	items, err := orch.FindFriends(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.Empty(t, backend.searchQueries)
}

func TestFindFriendsReturnsMembers(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{members: []client.Member{{InternalID: "member-1", DisplayName: "Ada"}}}
	orch, _ := testOrchestrator(t, backend, nil)

	items, err := orch.FindFriends(context.Background(), " ada ")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "member-1", items[0].ID)
	assert.Equal(t, []string{"ada"}, backend.searchQueries)
}

func TestSuggestionsReturnsMembers(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{members: []client.Member{{InternalID: "member-2", DisplayName: "Lin"}}}
	orch, _ := testOrchestrator(t, backend, nil)

	items, err := orch.Suggestions(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "member-2", items[0].ID)
	assert.Equal(t, 1, backend.suggestionsCalls)
}

func TestResetTrackersClearsSessionState(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	orch, _ := testOrchestrator(t, backend, nil)

	_, err := orch.InviteEmails(context.Background(), []string{"a@example.com"})
	require.NoError(t, err)

	orch.ResetTrackers()

	_, ok := orch.Tracker(SourceEmail).Succeeded("a@example.com")
	assert.False(t, ok)
}
