package invite

import "github.com/loopwell/invitekit/internal/client"

// Origin distinguishes backend-fetched rows from host-supplied ones (device
// contacts handed to the SDK by the host).
type Origin int

const (
	OriginBackend Origin = iota
	OriginHost
)

// ListItem is one row of any invitation surface: an outgoing invitation, a
// suggested member, a device contact. Whatever surface it belongs to, its
// Key identifies it in that surface's status tracker.
type ListItem struct {
	ID          string
	DisplayName string
	Subtitle    string
	AvatarURL   string
	Email       string
	Phone       string
	Origin      Origin
	Metadata    map[string]string
}

// Key returns the identity used for per-item status tracking: the id when
// the row has one, otherwise the email or phone that will be invited.
func (i ListItem) Key() string {
	switch {
	case i.ID != "":
		return i.ID
	case i.Email != "":
		return i.Email
	default:
		return i.Phone
	}
}

func fromRemoteInvitation(inv client.RemoteInvitation) ListItem {
	return ListItem{
		ID:          inv.ID,
		DisplayName: inv.DisplayName,
		Subtitle:    inv.Subtitle,
		AvatarURL:   inv.AvatarURL,
		Origin:      OriginBackend,
		Metadata:    inv.Metadata,
	}
}

func fromMember(m client.Member) ListItem {
	return ListItem{
		ID:          m.InternalID,
		DisplayName: m.DisplayName,
		Subtitle:    m.Subtitle,
		AvatarURL:   m.AvatarURL,
		Origin:      OriginBackend,
	}
}
