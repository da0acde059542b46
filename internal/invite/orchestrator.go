// Package invite drives invitation creation and management. The
// Orchestrator is the single entry point every surface funnels through: it
// validates targets, consults the host's callbacks, tracks per-item status,
// calls the backend, and announces successful creations on the event bus.
package invite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/loopwell/invitekit/internal/client"
	"github.com/loopwell/invitekit/internal/events"
	"github.com/loopwell/invitekit/internal/logger"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

// ErrVetoed is returned when a host callback declined the action.
var ErrVetoed = errors.New("action vetoed by host callback")

// Management surfaces carry their own trackers, keyed apart from the
// creation sources so invitation ids never collide with invite targets.
const (
	SurfaceIncoming = "incoming"
	SurfaceOutgoing = "outgoing"
)

// Backend is the slice of the API client the orchestrator drives. It is an
// interface so surfaces can be exercised against a fake in tests.
type Backend interface {
	CreateInvitation(ctx context.Context, req client.CreateInvitationRequest) ([]client.InvitationEntry, error)
	GenerateShareableLink(ctx context.Context, req client.ShareableLinkRequest) (*client.ShareableLink, error)
	OutgoingInvitations(ctx context.Context) ([]client.RemoteInvitation, error)
	IncomingInvitations(ctx context.Context) ([]client.RemoteInvitation, error)
	AcceptInvitation(ctx context.Context, id string) error
	RevokeInvitation(ctx context.Context, id string) error
	DeleteIncomingInvitation(ctx context.Context, id string) error
	SearchMembers(ctx context.Context, query string) ([]client.Member, error)
	Suggestions(ctx context.Context) ([]client.Member, error)
}

// Config wires an Orchestrator.
type Config struct {
	Backend               Backend
	WidgetConfigurationID string
	Group                 string
	Bus                   *events.Bus
	Callbacks             *Callbacks
	Logger                *logger.Logger
}

// Orchestrator coordinates every invitation surface against one backend
// session. Methods are safe for concurrent use.
type Orchestrator struct {
	backend   Backend
	configID  string
	group     string
	bus       *events.Bus
	callbacks *Callbacks
	log       *logger.Logger

	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewOrchestrator validates the wiring and creates an Orchestrator.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Backend == nil {
		return nil, apierrors.NewValidationError("backend", "a backend client is required", nil)
	}
	if cfg.WidgetConfigurationID == "" {
		return nil, apierrors.NewValidationError("widgetConfigurationId", "a widget configuration id is required", nil)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Orchestrator{
		backend:   cfg.Backend,
		configID:  cfg.WidgetConfigurationID,
		group:     cfg.Group,
		bus:       cfg.Bus,
		callbacks: cfg.Callbacks,
		log:       log,
		trackers:  make(map[string]*Tracker),
	}, nil
}

// Tracker returns the status tracker for one surface, creating it on first
// use. Surfaces track independently; a member invited from suggestions and
// an email invited from the compose screen can never shadow each other.
func (o *Orchestrator) Tracker(surface string) *Tracker {
	o.mu.Lock()
	defer o.mu.Unlock()

	tracker, ok := o.trackers[surface]
	if !ok {
		tracker = NewTracker()
		o.trackers[surface] = tracker
	}
	return tracker
}

// ResetTrackers drops all per-item state. Called on session teardown.
func (o *Orchestrator) ResetTrackers() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trackers = make(map[string]*Tracker)
}

// dispatch runs one invitation creation end to end: mark loading, call the
// backend, settle the tracker, and on success publish the event and notify
// the host.
func (o *Orchestrator) dispatch(ctx context.Context, source, key string, kind SuccessKind, payload map[string]any) (client.InvitationEntry, error) {
	tracker := o.Tracker(source)
	if err := tracker.Begin(key); err != nil {
		return client.InvitationEntry{}, err
	}

	entries, err := o.backend.CreateInvitation(ctx, client.CreateInvitationRequest{
		WidgetConfigurationID: o.configID,
		Payload:               payload,
		Source:                source,
		Group:                 o.group,
	})
	if err != nil {
		tracker.Fail(key, err.Error())
		o.callbacks.notifyFailed(source, err)
		o.log.WithFields(map[string]any{"source": source}).Error(err, "invitation failed")
		return client.InvitationEntry{}, err
	}
	if len(entries) == 0 {
		err := apierrors.NewDecodingError("invitation entries", errors.New("empty response"))
		tracker.Fail(key, err.Error())
		o.callbacks.notifyFailed(source, err)
		return client.InvitationEntry{}, err
	}

	entry := entries[0]
	if !entry.Succeeded() {
		err := fmt.Errorf("invitation rejected with status %q", entry.Status)
		tracker.Fail(key, err.Error())
		o.callbacks.notifyFailed(source, err)
		return entry, err
	}

	tracker.Succeed(key, kind)
	o.bus.Publish(ctx, events.InvitationSent{Source: source, ShortLink: entry.ShortLink})
	o.callbacks.notifyCreated(entry)
	o.log.WithFields(map[string]any{"source": source, "status": entry.Status}).Debug("invitation created")
	return entry, nil
}

// EmailResult is the per-address outcome of InviteEmails.
type EmailResult struct {
	Address string
	Entry   client.InvitationEntry
	Err     error
}

// InviteEmails dispatches one invitation per address, sequentially and in
// order. Every address is attempted regardless of earlier failures; the
// returned error is non-nil when any of them failed, and the per-address
// outcomes carry the detail.
func (o *Orchestrator) InviteEmails(ctx context.Context, addresses []string) ([]EmailResult, error) {
	results := make([]EmailResult, 0, len(addresses))
	failed := 0

	for _, address := range addresses {
		result := EmailResult{Address: address}
		result.Entry, result.Err = o.inviteEmail(ctx, address)
		if result.Err != nil {
			failed++
		}
		results = append(results, result)
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d invitations failed", failed, len(addresses))
	}
	return results, nil
}

func (o *Orchestrator) inviteEmail(ctx context.Context, address string) (client.InvitationEntry, error) {
	if err := ValidateEmail(address); err != nil {
		return client.InvitationEntry{}, err
	}
	item := ListItem{Email: address, Origin: OriginHost}
	if !o.callbacks.allowInvite(item) {
		return client.InvitationEntry{}, ErrVetoed
	}
	return o.dispatch(ctx, SourceEmail, item.Key(), SuccessInvited, EmailPayload(address))
}

// InviteContact invites one device contact by email address.
func (o *Orchestrator) InviteContact(ctx context.Context, item ListItem) (client.InvitationEntry, error) {
	return o.inviteNamedEmail(ctx, SourceContacts, item)
}

// InviteGoogleContact invites one Google contact by email address.
func (o *Orchestrator) InviteGoogleContact(ctx context.Context, item ListItem) (client.InvitationEntry, error) {
	return o.inviteNamedEmail(ctx, SourceGoogle, item)
}

func (o *Orchestrator) inviteNamedEmail(ctx context.Context, source string, item ListItem) (client.InvitationEntry, error) {
	if err := ValidateEmail(item.Email); err != nil {
		return client.InvitationEntry{}, err
	}
	if !o.callbacks.allowInvite(item) {
		return client.InvitationEntry{}, ErrVetoed
	}
	return o.dispatch(ctx, source, item.Key(), SuccessInvited, ContactPayload(item.Email, item.DisplayName))
}

// ConnectMember sends a connection invitation to an existing member from
// the find-friends surface.
func (o *Orchestrator) ConnectMember(ctx context.Context, item ListItem) (client.InvitationEntry, error) {
	if item.ID == "" {
		return client.InvitationEntry{}, apierrors.NewValidationError("internalId", "member has no internal id", nil)
	}
	if !o.callbacks.allowConnect(item) {
		return client.InvitationEntry{}, ErrVetoed
	}
	return o.dispatch(ctx, SourceOther, item.Key(), SuccessConnected, InternalPayload(item.ID, item.DisplayName))
}

// InviteSuggestion invites a suggested member. Suggestions and find-friends
// share the same tracker keyed by internal id, so a member already connected
// through search cannot be invited again from the suggestion feed.
func (o *Orchestrator) InviteSuggestion(ctx context.Context, item ListItem) (client.InvitationEntry, error) {
	if item.ID == "" {
		return client.InvitationEntry{}, apierrors.NewValidationError("internalId", "member has no internal id", nil)
	}
	if !o.callbacks.allowInvite(item) {
		return client.InvitationEntry{}, ErrVetoed
	}
	return o.dispatch(ctx, SourceOther, item.Key(), SuccessInvited, InternalPayload(item.ID, item.DisplayName))
}

// DismissSuggestion removes a suggestion locally. Nothing is sent to the
// backend and no event is published; the row is only marked dismissed for
// the rest of the session.
func (o *Orchestrator) DismissSuggestion(item ListItem) error {
	if !o.callbacks.allowDismiss(item) {
		return ErrVetoed
	}

	tracker := o.Tracker(SourceOther)
	if err := tracker.Begin(item.Key()); err != nil {
		return err
	}
	tracker.Succeed(item.Key(), SuccessDismissed)
	return nil
}

// InviteSMS dispatches an SMS invitation to one E.164 phone number.
func (o *Orchestrator) InviteSMS(ctx context.Context, phone, name string) (client.InvitationEntry, error) {
	if err := ValidatePhone(phone); err != nil {
		return client.InvitationEntry{}, err
	}
	item := ListItem{Phone: phone, DisplayName: name, Origin: OriginHost}
	if !o.callbacks.allowInvite(item) {
		return client.InvitationEntry{}, ErrVetoed
	}
	return o.dispatch(ctx, SourceSMS, item.Key(), SuccessInvited, SMSPayload(phone, name))
}

// GenerateShareableLink creates a link invitation and announces it like any
// other creation.
func (o *Orchestrator) GenerateShareableLink(ctx context.Context) (*client.ShareableLink, error) {
	link, err := o.backend.GenerateShareableLink(ctx, client.ShareableLinkRequest{
		WidgetConfigurationID: o.configID,
		Group:                 o.group,
	})
	if err != nil {
		o.callbacks.notifyFailed(SourceLink, err)
		o.log.Error(err, "shareable link failed")
		return nil, err
	}

	o.bus.Publish(ctx, events.InvitationSent{Source: SourceLink, ShortLink: link.ShortLink})
	o.callbacks.notifyCreated(client.InvitationEntry{
		ID:        link.ID,
		Status:    client.StatusCreated,
		ShortLink: link.ShortLink,
	})
	return link, nil
}

// AcceptInvitation accepts an incoming invitation. Management operations
// publish no event; only creations are announced on the bus.
func (o *Orchestrator) AcceptInvitation(ctx context.Context, id string) error {
	if !o.callbacks.allowAccept(id) {
		return ErrVetoed
	}
	return o.manage(ctx, SurfaceIncoming, id, SuccessAccepted, o.backend.AcceptInvitation)
}

// RevokeInvitation withdraws an outgoing invitation.
func (o *Orchestrator) RevokeInvitation(ctx context.Context, id string) error {
	if !o.callbacks.allowCancel(id) {
		return ErrVetoed
	}
	return o.manage(ctx, SurfaceOutgoing, id, SuccessRevoked, o.backend.RevokeInvitation)
}

// DeleteIncomingInvitation dismisses an incoming invitation.
func (o *Orchestrator) DeleteIncomingInvitation(ctx context.Context, id string) error {
	if !o.callbacks.allowDelete(id) {
		return ErrVetoed
	}
	return o.manage(ctx, SurfaceIncoming, id, SuccessDeleted, o.backend.DeleteIncomingInvitation)
}

func (o *Orchestrator) manage(ctx context.Context, surface, id string, kind SuccessKind, call func(context.Context, string) error) error {
	tracker := o.Tracker(surface)
	if err := tracker.Begin(id); err != nil {
		return err
	}

	if err := call(ctx, id); err != nil {
		tracker.Fail(id, err.Error())
		return err
	}
	tracker.Succeed(id, kind)
	return nil
}

// OutgoingInvitations lists the invitations the current user has sent.
func (o *Orchestrator) OutgoingInvitations(ctx context.Context) ([]ListItem, error) {
	invitations, err := o.backend.OutgoingInvitations(ctx)
	if err != nil {
		return nil, err
	}
	return remoteItems(invitations), nil
}

// IncomingInvitations lists the invitations awaiting the current user.
func (o *Orchestrator) IncomingInvitations(ctx context.Context) ([]ListItem, error) {
	invitations, err := o.backend.IncomingInvitations(ctx)
	if err != nil {
		return nil, err
	}
	return remoteItems(invitations), nil
}

// FindFriends searches platform members. An empty query returns nothing
// without touching the backend.
func (o *Orchestrator) FindFriends(ctx context.Context, query string) ([]ListItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	members, err := o.backend.SearchMembers(ctx, query)
	if err != nil {
		return nil, err
	}
	return memberItems(members), nil
}

// Suggestions fetches the backend's suggested members to invite.
func (o *Orchestrator) Suggestions(ctx context.Context) ([]ListItem, error) {
	members, err := o.backend.Suggestions(ctx)
	if err != nil {
		return nil, err
	}
	return memberItems(members), nil
}

func remoteItems(invitations []client.RemoteInvitation) []ListItem {
	items := make([]ListItem, 0, len(invitations))
	for _, inv := range invitations {
		items = append(items, fromRemoteInvitation(inv))
	}
	return items
}

func memberItems(members []client.Member) []ListItem {
	items := make([]ListItem, 0, len(members))
	for _, member := range members {
		items = append(items, fromMember(member))
	}
	return items
}
