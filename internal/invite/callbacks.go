package invite

import "github.com/loopwell/invitekit/internal/client"

// Callbacks lets the host application intercept invitation actions and
// observe outcomes. Gate callbacks return false to veto the action; a nil
// gate allows it. Notification callbacks are fire and forget.
type Callbacks struct {
	// Gates. Each runs before the corresponding action is dispatched.
	OnInvite  func(item ListItem) bool
	OnConnect func(item ListItem) bool
	OnDismiss func(item ListItem) bool
	OnAccept  func(id string) bool
	OnDelete  func(id string) bool
	OnCancel  func(id string) bool

	// Notifications.
	OnInvitationCreated func(entry client.InvitationEntry)
	OnInvitationFailed  func(source string, err error)
}

func (c *Callbacks) allowInvite(item ListItem) bool {
	if c == nil || c.OnInvite == nil {
		return true
	}
	return c.OnInvite(item)
}

func (c *Callbacks) allowConnect(item ListItem) bool {
	if c == nil || c.OnConnect == nil {
		return true
	}
	return c.OnConnect(item)
}

func (c *Callbacks) allowDismiss(item ListItem) bool {
	if c == nil || c.OnDismiss == nil {
		return true
	}
	return c.OnDismiss(item)
}

func (c *Callbacks) allowAccept(id string) bool {
	if c == nil || c.OnAccept == nil {
		return true
	}
	return c.OnAccept(id)
}

func (c *Callbacks) allowDelete(id string) bool {
	if c == nil || c.OnDelete == nil {
		return true
	}
	return c.OnDelete(id)
}

func (c *Callbacks) allowCancel(id string) bool {
	if c == nil || c.OnCancel == nil {
		return true
	}
	return c.OnCancel(id)
}

func (c *Callbacks) notifyCreated(entry client.InvitationEntry) {
	if c == nil || c.OnInvitationCreated == nil {
		return
	}
	c.OnInvitationCreated(entry)
}

func (c *Callbacks) notifyFailed(source string, err error) {
	if c == nil || c.OnInvitationFailed == nil {
		return
	}
	c.OnInvitationFailed(source, err)
}
