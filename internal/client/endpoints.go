package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/loopwell/invitekit/internal/schema"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

const (
	pathWidgetConfiguration = "/v1/widget-configuration"
	pathInvitations         = "/v1/invitations"
	pathShareableLink       = "/v1/invitations/link"
	pathOutgoing            = "/v1/invitations/outgoing"
	pathIncoming            = "/v1/invitations/incoming"
	pathMemberSearch        = "/v1/members/search"
	pathSuggestions         = "/v1/members/suggestions"
	pathDeferredMatch       = "/v1/deferred-link/match"
)

// WidgetConfiguration fetches the configuration document for a component.
// Locale may be empty for the default locale. The response's attestation
// token, when present, is retained and echoed on every later request.
func (c *Client) WidgetConfiguration(ctx context.Context, componentID, locale string) (*schema.Envelope, error) {
	query := url.Values{"componentId": {componentID}}
	if locale != "" {
		query.Set("locale", locale)
	}

	raw, err := c.do(ctx, requestSpec{
		op:        "widget-configuration",
		method:    http.MethodGet,
		path:      pathWidgetConfiguration,
		query:     query,
		retryable: true,
	})
	if err != nil {
		return nil, err
	}

	envelope, err := schema.ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if envelope.SessionAttestation != "" {
		c.attestation.Store(envelope.SessionAttestation)
	}
	return envelope, nil
}

// CreateInvitation dispatches one invitation creation. Calls pass through
// the client-side throttle; they are never retried, since a duplicate send
// is worse than a surfaced failure.
func (c *Client) CreateInvitation(ctx context.Context, req CreateInvitationRequest) ([]InvitationEntry, error) {
	const op = "create-invitation"

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apierrors.NewTransportError(op, err)
	}

	raw, err := c.do(ctx, requestSpec{
		op:     op,
		method: http.MethodPost,
		path:   pathInvitations,
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var resp createInvitationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierrors.NewDecodingError("invitation entries", err)
	}
	return resp.Entries, nil
}

// GenerateShareableLink asks the backend for a shareable link invitation.
func (c *Client) GenerateShareableLink(ctx context.Context, req ShareableLinkRequest) (*ShareableLink, error) {
	raw, err := c.do(ctx, requestSpec{
		op:     "generate-shareable-link",
		method: http.MethodPost,
		path:   pathShareableLink,
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	var resp shareableLinkResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierrors.NewDecodingError("shareable link", err)
	}
	if resp.Invitation.ShortLink == "" {
		return nil, apierrors.NewDecodingError("shareable link", errMissingField("shortLink"))
	}
	return &resp.Invitation, nil
}

// OutgoingInvitations lists invitations the current user has sent.
func (c *Client) OutgoingInvitations(ctx context.Context) ([]RemoteInvitation, error) {
	return c.listInvitations(ctx, "outgoing-invitations", pathOutgoing)
}

// IncomingInvitations lists invitations awaiting the current user.
func (c *Client) IncomingInvitations(ctx context.Context) ([]RemoteInvitation, error) {
	return c.listInvitations(ctx, "incoming-invitations", pathIncoming)
}

func (c *Client) listInvitations(ctx context.Context, op, path string) ([]RemoteInvitation, error) {
	raw, err := c.do(ctx, requestSpec{
		op:        op,
		method:    http.MethodGet,
		path:      path,
		retryable: true,
	})
	if err != nil {
		return nil, err
	}

	var resp invitationsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierrors.NewDecodingError(op, err)
	}
	return resp.Invitations, nil
}

// AcceptInvitation accepts an incoming invitation.
func (c *Client) AcceptInvitation(ctx context.Context, id string) error {
	_, err := c.do(ctx, requestSpec{
		op:     "accept-invitation",
		method: http.MethodPost,
		path:   pathIncoming + "/" + url.PathEscape(id) + "/accept",
	})
	return err
}

// RevokeInvitation withdraws an outgoing invitation.
func (c *Client) RevokeInvitation(ctx context.Context, id string) error {
	_, err := c.do(ctx, requestSpec{
		op:     "revoke-invitation",
		method: http.MethodDelete,
		path:   pathOutgoing + "/" + url.PathEscape(id),
	})
	return err
}

// DeleteIncomingInvitation dismisses an incoming invitation.
func (c *Client) DeleteIncomingInvitation(ctx context.Context, id string) error {
	_, err := c.do(ctx, requestSpec{
		op:     "delete-incoming-invitation",
		method: http.MethodDelete,
		path:   pathIncoming + "/" + url.PathEscape(id),
	})
	return err
}

// SearchMembers looks up platform members for the find-friends surface.
func (c *Client) SearchMembers(ctx context.Context, query string) ([]Member, error) {
	const op = "member-search"

	raw, err := c.do(ctx, requestSpec{
		op:        op,
		method:    http.MethodGet,
		path:      pathMemberSearch,
		query:     url.Values{"q": {query}},
		retryable: true,
	})
	if err != nil {
		return nil, err
	}

	var resp membersResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierrors.NewDecodingError(op, err)
	}
	return resp.Members, nil
}

// Suggestions fetches the backend's suggested members to invite.
func (c *Client) Suggestions(ctx context.Context) ([]Member, error) {
	const op = "suggestions"

	raw, err := c.do(ctx, requestSpec{
		op:        op,
		method:    http.MethodGet,
		path:      pathSuggestions,
		retryable: true,
	})
	if err != nil {
		return nil, err
	}

	var resp membersResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apierrors.NewDecodingError(op, err)
	}
	return resp.Members, nil
}

// MatchDeferredLink probes for a deferred deep-link match for this device.
func (c *Client) MatchDeferredLink(ctx context.Context, fingerprint DeviceFingerprint) (*DeferredMatch, error) {
	raw, err := c.do(ctx, requestSpec{
		op:     "deferred-link-match",
		method: http.MethodPost,
		path:   pathDeferredMatch,
		body:   deferredMatchRequest{DeviceFingerprint: fingerprint},
	})
	if err != nil {
		return nil, err
	}

	var match DeferredMatch
	if err := json.Unmarshal(raw, &match); err != nil {
		return nil, apierrors.NewDecodingError("deferred link match", err)
	}
	return &match, nil
}

type errMissingField string

func (e errMissingField) Error() string { return "missing " + string(e) }
