// Package events carries cross-surface notifications. The SDK publishes a
// single event: one successful invitation creation. Surfaces that care,
// such as an outgoing-invitations list or a host badge, subscribe and
// react; nothing is queried back and nothing is replayed.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/loopwell/invitekit/internal/logger"
)

// InvitationSent records one successful invitation creation.
type InvitationSent struct {
	Source    string
	ShortLink string
	Timestamp time.Time
}

// Handler consumes published events. Errors are logged, never propagated
// back to the publishing surface.
type Handler func(ctx context.Context, event InvitationSent) error

// Subscription detaches a handler or channel feed.
type Subscription interface {
	Unsubscribe()
}

type subscriptionEntry struct {
	id      int
	handler Handler
	feed    chan InvitationSent
}

// Bus fans InvitationSent events out to subscribers.
type Bus struct {
	log    *logger.Logger
	mu     sync.RWMutex
	subs   []subscriptionEntry
	nextID int
}

// NewBus creates a bus. A nil logger is valid.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{log: log}
}

// Publish delivers the event to every subscriber. A zero timestamp is
// stamped with the current time. Channel feeds that are full are skipped
// rather than blocked on.
func (b *Bus) Publish(ctx context.Context, event InvitationSent) {
	if b == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	subs := append([]subscriptionEntry(nil), b.subs...)
	b.mu.RUnlock()

	b.log.WithFields(map[string]any{
		"source":     event.Source,
		"short_link": event.ShortLink,
	}).Debug("invitation sent event")

	for _, entry := range subs {
		if entry.handler != nil {
			if err := entry.handler(ctx, event); err != nil {
				b.log.Error(err, "event handler failed")
			}
			continue
		}
		if entry.feed != nil {
			select {
			case entry.feed <- event:
			default:
				b.log.Warn("event feed full, dropping event")
			}
		}
	}
}

// Subscribe registers a handler and returns its subscription.
func (b *Bus) Subscribe(handler Handler) Subscription {
	if b == nil || handler == nil {
		return noopSubscription{}
	}
	return b.add(subscriptionEntry{handler: handler})
}

// Feed returns a buffered channel delivery of future events, for hosts
// whose update loop drains a channel. The channel is never closed; stop
// reading after Unsubscribe.
func (b *Bus) Feed() (<-chan InvitationSent, Subscription) {
	if b == nil {
		ch := make(chan InvitationSent)
		return ch, noopSubscription{}
	}
	feed := make(chan InvitationSent, 16)
	sub := b.add(subscriptionEntry{feed: feed})
	return feed, sub
}

func (b *Bus) add(entry subscriptionEntry) Subscription {
	b.mu.Lock()
	b.nextID++
	entry.id = b.nextID
	b.subs = append(b.subs, entry)
	b.mu.Unlock()

	id := entry.id
	return subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, existing := range b.subs {
			if existing.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
	}}
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type subscription struct {
	cancel func()
}

func (s subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}
