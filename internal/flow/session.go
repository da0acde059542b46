// Package flow owns the navigation state of one rendered invitation
// surface. A Session is headless: it decides what is visible and when data
// loads, while rendering and input stay with the caller. All methods are
// safe for concurrent use; reads go through Snapshot.
package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/loopwell/invitekit/internal/client"
	"github.com/loopwell/invitekit/internal/configstore"
	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/internal/logger"
	"github.com/loopwell/invitekit/internal/schema"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

// Refresh and link fetches collapse concurrent callers instead of queueing
// them.
var (
	ErrRefreshInFlight   = errors.New("configuration refresh already in flight")
	ErrLinkFetchInFlight = errors.New("shareable link fetch already in flight")
)

// The main page hides the email-invitations group; that surface has a
// dedicated state of its own.
const groupEmailInvitations = "email-invitations"

// ConfigFetcher fetches live configuration from the backend.
type ConfigFetcher interface {
	WidgetConfiguration(ctx context.Context, componentID, locale string) (*schema.Envelope, error)
}

// ContactSource supplies a contact list for one of the picker states.
type ContactSource interface {
	List(ctx context.Context) ([]invite.ListItem, error)
}

// Config wires a Session.
type Config struct {
	ComponentID    string
	Locale         string
	Store          *configstore.Store
	Fetcher        ConfigFetcher
	Orchestrator   *invite.Orchestrator
	Contacts       ContactSource
	GoogleContacts ContactSource
	Logger         *logger.Logger

	// OnClose fires once, when the session is dismissed from the main
	// state. The host tears the surface down in response.
	OnClose func()
}

// Session drives one invitation surface from first load to dismissal.
type Session struct {
	componentID    string
	locale         string
	store          *configstore.Store
	fetcher        ConfigFetcher
	orch           *invite.Orchestrator
	contactSource  ContactSource
	googleSource   ContactSource
	log            *logger.Logger
	onClose        func()

	mu            sync.Mutex
	state         State
	configuration *schema.Configuration
	deploymentID  string
	loading       bool
	refreshing    bool
	loadErr       error
	dismissed     bool

	emailText  string
	searchText string

	contacts       []invite.ListItem
	googleContacts []invite.ListItem

	link         *client.ShareableLink
	linkFetching bool
	linkErr      error
}

// Snapshot is a read-consistent copy of the session. Slices and pointers are
// shared with the session and must be treated as read-only.
type Snapshot struct {
	State          State
	Configuration  *schema.Configuration
	DeploymentID   string
	Loading        bool
	Refreshing     bool
	Err            error
	Dismissed      bool
	EmailText      string
	SearchText     string
	Contacts       []invite.ListItem
	GoogleContacts []invite.ListItem
	Link           *client.ShareableLink
	LinkFetching   bool
	LinkErr        error
}

// NewSession validates the wiring and creates a session in the main state.
func NewSession(cfg Config) (*Session, error) {
	if cfg.ComponentID == "" {
		return nil, apierrors.NewValidationError("componentId", "a component id is required", nil)
	}
	if cfg.Store == nil {
		return nil, apierrors.NewValidationError("store", "a configuration store is required", nil)
	}
	if cfg.Fetcher == nil {
		return nil, apierrors.NewValidationError("fetcher", "a configuration fetcher is required", nil)
	}
	if cfg.Orchestrator == nil {
		return nil, apierrors.NewValidationError("orchestrator", "an orchestrator is required", nil)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Session{
		componentID:   cfg.ComponentID,
		locale:        cfg.Locale,
		store:         cfg.Store,
		fetcher:       cfg.Fetcher,
		orch:          cfg.Orchestrator,
		contactSource: cfg.Contacts,
		googleSource:  cfg.GoogleContacts,
		log:           log,
		onClose:       cfg.OnClose,
		state:         StateMain,
		loading:       true,
	}, nil
}

// Orchestrator exposes the invitation orchestrator the session was wired
// with, so callers dispatch actions against the same trackers the session
// resets on teardown.
func (s *Session) Orchestrator() *invite.Orchestrator {
	return s.orch
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		State:          s.state,
		Configuration:  s.configuration,
		DeploymentID:   s.deploymentID,
		Loading:        s.loading,
		Refreshing:     s.refreshing,
		Err:            s.loadErr,
		Dismissed:      s.dismissed,
		EmailText:      s.emailText,
		SearchText:     s.searchText,
		Contacts:       s.contacts,
		GoogleContacts: s.googleContacts,
		Link:           s.link,
		LinkFetching:   s.linkFetching,
		LinkErr:        s.linkErr,
	}
}

// State returns the active view state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dismissed reports whether the session has been torn down.
func (s *Session) Dismissed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dismissed
}

// LoadCached exposes the cached configuration synchronously, if any, and
// reports whether a configuration is now available to render. A cached copy
// suppresses the loading indicator.
func (s *Session) LoadCached() bool {
	entry, ok := s.store.Get(s.componentID, s.locale)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		s.configuration = entry.Configuration
		s.deploymentID = entry.DeploymentID
		s.loadErr = nil
	}
	s.loading = s.configuration == nil
	return s.configuration != nil
}

// Refresh performs one live fetch and swaps the result in. Concurrent calls
// collapse: a second caller gets ErrRefreshInFlight. A fetch superseded by a
// newer one (or by an explicit store Set) is discarded, and the store's
// fresher entry is exposed instead. Failures surface through Snapshot().Err
// only when nothing was ever exposed; behind a stale copy they are logged
// and swallowed.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return ErrRefreshInFlight
	}
	s.refreshing = true
	s.mu.Unlock()

	gen := s.store.BeginFetch(s.componentID, s.locale)
	envelope, err := s.fetcher.WidgetConfiguration(ctx, s.componentID, s.locale)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = false

	if err != nil {
		if s.configuration == nil {
			s.loading = false
			s.loadErr = err
		} else {
			s.log.WithFields(map[string]any{
				"component_id": s.componentID,
			}).Error(err, "background configuration refresh failed")
		}
		return err
	}

	if s.store.CompleteFetch(s.componentID, s.locale, gen, envelope.Configuration, envelope.DeploymentID) {
		s.configuration = envelope.Configuration
		s.deploymentID = envelope.DeploymentID
	} else if entry, ok := s.store.Get(s.componentID, s.locale); ok {
		// Superseded while in flight; expose whatever won.
		s.configuration = entry.Configuration
		s.deploymentID = entry.DeploymentID
	}
	s.loading = false
	s.loadErr = nil
	return nil
}

// Load runs the full sequence: synchronous cache read, then a live fetch.
// The returned error is nil whenever something is renderable, cached or
// fresh.
func (s *Session) Load(ctx context.Context) error {
	cached := s.LoadCached()
	if err := s.Refresh(ctx); err != nil && !cached {
		return err
	}
	return nil
}

// EnterEmailEntry opens the email compose surface with blank input.
func (s *Session) EnterEmailEntry() {
	s.enter(StateEmailEntry)
}

// EnterContactsPicker opens the device contacts surface with blank search.
func (s *Session) EnterContactsPicker() {
	s.enter(StateContactsPicker)
}

// EnterGoogleContactsPicker opens the Google contacts surface with blank
// search.
func (s *Session) EnterGoogleContactsPicker() {
	s.enter(StateGoogleContactsPicker)
}

// EnterQRCode opens the QR surface. The shareable link, once fetched, is
// kept across visits; see FetchLink.
func (s *Session) EnterQRCode() {
	s.enter(StateQRCode)
}

// enter transitions to a non-main state, resetting its transient sub-state.
// Fetched list data and the shareable link survive; per-item action status
// lives in the orchestrator's trackers and survives too.
func (s *Session) enter(to State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dismissed || s.state == to {
		return
	}
	switch to {
	case StateEmailEntry:
		s.emailText = ""
	case StateContactsPicker, StateGoogleContactsPicker:
		s.searchText = ""
	case StateQRCode:
		s.linkErr = nil
	}
	s.state = to
}

// Back returns to the main state, or dismisses the session when already
// there.
func (s *Session) Back() {
	s.mu.Lock()
	if s.dismissed {
		s.mu.Unlock()
		return
	}
	if s.state != StateMain {
		s.state = StateMain
		s.mu.Unlock()
		return
	}
	s.dismissed = true
	s.mu.Unlock()

	s.orch.ResetTrackers()
	if s.onClose != nil {
		s.onClose()
	}
}

// Close behaves exactly like Back: sub-states return to main, main
// dismisses.
func (s *Session) Close() {
	s.Back()
}

// HiddenGroups returns the node groups suppressed in the current state, in
// the shape the schema visibility filter takes.
func (s *Session) HiddenGroups() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateMain {
		return map[string]bool{groupEmailInvitations: true}
	}
	return nil
}

// SetEmailText records the email compose input.
func (s *Session) SetEmailText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailText = text
}

// SetSearchText records the picker search input.
func (s *Session) SetSearchText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchText = text
}

// LoadContacts fills the device contact list. The list fetched during a
// session is reused; the source is consulted again only when the in-memory
// list is empty.
func (s *Session) LoadContacts(ctx context.Context) ([]invite.ListItem, error) {
	s.mu.Lock()
	if len(s.contacts) > 0 {
		items := s.contacts
		s.mu.Unlock()
		return items, nil
	}
	source := s.contactSource
	s.mu.Unlock()

	items, err := listContacts(ctx, source, "contacts")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.contacts = items
	s.mu.Unlock()
	return items, nil
}

// LoadGoogleContacts fills the Google contact list, with the same reuse rule
// as LoadContacts.
func (s *Session) LoadGoogleContacts(ctx context.Context) ([]invite.ListItem, error) {
	s.mu.Lock()
	if len(s.googleContacts) > 0 {
		items := s.googleContacts
		s.mu.Unlock()
		return items, nil
	}
	source := s.googleSource
	s.mu.Unlock()

	items, err := listContacts(ctx, source, "google contacts")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.googleContacts = items
	s.mu.Unlock()
	return items, nil
}

func listContacts(ctx context.Context, source ContactSource, name string) ([]invite.ListItem, error) {
	if source == nil {
		return nil, apierrors.NewExternalServiceError(name, errors.New("no source configured"))
	}
	return source.List(ctx)
}

// FetchLink returns the session's shareable link, fetching it from the
// backend at most once. Concurrent callers collapse to one fetch; a second
// caller gets ErrLinkFetchInFlight. ClearLink forces the next call to fetch
// again.
func (s *Session) FetchLink(ctx context.Context) (*client.ShareableLink, error) {
	s.mu.Lock()
	if s.link != nil {
		link := s.link
		s.mu.Unlock()
		return link, nil
	}
	if s.linkFetching {
		s.mu.Unlock()
		return nil, ErrLinkFetchInFlight
	}
	s.linkFetching = true
	s.mu.Unlock()

	link, err := s.orch.GenerateShareableLink(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkFetching = false

	if err != nil {
		s.linkErr = err
		return nil, err
	}
	s.link = link
	s.linkErr = nil
	return link, nil
}

// ClearLink drops the fetched link so the next FetchLink hits the backend.
// A configuration refresh does not do this implicitly.
func (s *Session) ClearLink() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link = nil
	s.linkErr = nil
}
