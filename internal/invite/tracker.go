package invite

import (
	"errors"
	"sync"
)

// SuccessKind records what a succeeded item turned into.
type SuccessKind int

const (
	SuccessInvited SuccessKind = iota
	SuccessConnected
	SuccessDismissed
	SuccessAccepted
	SuccessRevoked
	SuccessDeleted
)

// Begin refusals.
var (
	ErrInFlight         = errors.New("action already in flight for this item")
	ErrAlreadySucceeded = errors.New("item already succeeded")
)

// Tracker owns the per-item action state of one surface. The three sets are
// disjoint: an item is loading only while its call is outstanding, and on
// completion lands in exactly one of succeeded or failed. Failed items may
// retry; succeeded items never do.
type Tracker struct {
	mu        sync.RWMutex
	loading   map[string]bool
	succeeded map[string]SuccessKind
	failed    map[string]string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		loading:   make(map[string]bool),
		succeeded: make(map[string]SuccessKind),
		failed:    make(map[string]string),
	}
}

// Begin moves an item into loading. It refuses items already in flight and
// items that already succeeded; a previous failure is cleared, which is
// what makes failed items retryable in place.
func (t *Tracker) Begin(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loading[key] {
		return ErrInFlight
	}
	if _, ok := t.succeeded[key]; ok {
		return ErrAlreadySucceeded
	}
	delete(t.failed, key)
	t.loading[key] = true
	return nil
}

// Succeed completes an item: out of loading and failed, into succeeded.
func (t *Tracker) Succeed(key string, kind SuccessKind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.loading, key)
	delete(t.failed, key)
	t.succeeded[key] = kind
}

// Fail completes an item with a message: out of loading, into failed.
func (t *Tracker) Fail(key, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.loading, key)
	if _, ok := t.succeeded[key]; ok {
		// Succeeded items stay succeeded.
		return
	}
	t.failed[key] = message
}

// IsLoading reports whether the item's call is outstanding.
func (t *Tracker) IsLoading(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading[key]
}

// Succeeded reports the item's success kind, if it succeeded.
func (t *Tracker) Succeeded(key string) (SuccessKind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	kind, ok := t.succeeded[key]
	return kind, ok
}

// FailureMessage reports the item's failure, if it failed.
func (t *Tracker) FailureMessage(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	message, ok := t.failed[key]
	return message, ok
}

// AnyLoading reports whether any item of the surface is in flight.
func (t *Tracker) AnyLoading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.loading) > 0
}

// Reset drops all state. Used when a whole session is torn down, never on
// mere surface re-entry: succeeded items must stay succeeded for the
// session so they are not retried.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loading = make(map[string]bool)
	t.succeeded = make(map[string]SuccessKind)
	t.failed = make(map[string]string)
}
