package client

import "time"

// Entry statuses the backend reports for each created invitation. Anything
// other than failed counts as a success.
const (
	StatusCreated   = "created"
	StatusPending   = "pending"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
)

// CreateInvitationRequest is the single contract every invitation surface
// funnels into. Payload shapes vary per surface; see the invite package's
// builders.
type CreateInvitationRequest struct {
	WidgetConfigurationID string            `json:"widgetConfigurationId"`
	Payload               map[string]any    `json:"payload"`
	Source                string            `json:"source"`
	Group                 string            `json:"group,omitempty"`
	Targets               []string          `json:"targets,omitempty"`
	TemplateVariables     map[string]string `json:"templateVariables,omitempty"`
	Metadata              map[string]string `json:"metadata,omitempty"`
}

// InvitationEntry is the per-target outcome of a create call.
type InvitationEntry struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ShortLink string `json:"shortLink,omitempty"`
}

// Succeeded reports whether the entry represents a created invitation.
func (e InvitationEntry) Succeeded() bool {
	return e.Status != StatusFailed
}

type createInvitationResponse struct {
	Entries []InvitationEntry `json:"invitationEntries"`
}

// ShareableLinkRequest asks the backend for a session-shareable invitation
// link.
type ShareableLinkRequest struct {
	WidgetConfigurationID string            `json:"widgetConfigurationId"`
	Group                 string            `json:"group,omitempty"`
	TemplateVariables     map[string]string `json:"templateVariables,omitempty"`
	Metadata              map[string]string `json:"metadata,omitempty"`
}

// ShareableLink is a generated link invitation.
type ShareableLink struct {
	ID         string            `json:"id"`
	ShortLink  string            `json:"shortLink"`
	Source     string            `json:"source,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type shareableLinkResponse struct {
	Invitation ShareableLink `json:"invitation"`
}

// RemoteInvitation is one row of the incoming or outgoing invitation lists.
type RemoteInvitation struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"displayName"`
	Subtitle    string            `json:"subtitle,omitempty"`
	AvatarURL   string            `json:"avatarUrl,omitempty"`
	Status      string            `json:"status,omitempty"`
	ShortLink   string            `json:"shortLink,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type invitationsResponse struct {
	Invitations []RemoteInvitation `json:"invitations"`
}

// Member is a platform member surfaced by find-friends search or the
// suggestions feed; InternalID is the invitation target.
type Member struct {
	InternalID  string `json:"internalId"`
	DisplayName string `json:"displayName"`
	Subtitle    string `json:"subtitle,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

type membersResponse struct {
	Members []Member `json:"members"`
}

// DeviceFingerprint describes the requesting device for deferred deep-link
// matching.
type DeviceFingerprint struct {
	Platform  string `json:"platform"`
	OSVersion string `json:"osVersion,omitempty"`
	Model     string `json:"model,omitempty"`
	Language  string `json:"language,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// DeferredMatch is the backend's verdict on a deferred deep-link probe.
type DeferredMatch struct {
	Matched    bool              `json:"matched"`
	Confidence string            `json:"confidence,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
}

type deferredMatchRequest struct {
	DeviceFingerprint DeviceFingerprint `json:"deviceFingerprint"`
}
