package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

const (
	defaultPeopleBaseURL = "https://people.googleapis.com"
	peoplePageSize       = "200"
)

// TokenSource supplies a bearer token for the People API. The OAuth sign-in
// flow itself stays on the host side.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// GoogleSource lists the signed-in user's Google contacts through the
// People API connections endpoint, following pagination.
type GoogleSource struct {
	tokens  TokenSource
	http    *http.Client
	baseURL string
}

// NewGoogleSource creates a source over the People API. A nil httpClient
// gets a default with a 30s timeout.
func NewGoogleSource(tokens TokenSource, httpClient *http.Client) *GoogleSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &GoogleSource{
		tokens:  tokens,
		http:    httpClient,
		baseURL: defaultPeopleBaseURL,
	}
}

type personField struct {
	Value       string `json:"value,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	URL         string `json:"url,omitempty"`
}

type person struct {
	ResourceName   string        `json:"resourceName"`
	Names          []personField `json:"names,omitempty"`
	EmailAddresses []personField `json:"emailAddresses,omitempty"`
	Photos         []personField `json:"photos,omitempty"`
}

type connectionsPage struct {
	Connections   []person `json:"connections"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// List fetches every page of connections. Contacts without an email address
// are skipped, since they cannot be invited through this surface.
func (s *GoogleSource) List(ctx context.Context) ([]invite.ListItem, error) {
	if s.tokens == nil {
		return nil, apierrors.NewExternalServiceError("google contacts", errors.New("no token source configured"))
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, apierrors.NewExternalServiceError("google contacts", err)
	}

	var items []invite.ListItem
	pageToken := ""
	for {
		page, err := s.fetchPage(ctx, token, pageToken)
		if err != nil {
			return nil, err
		}

		for _, p := range page.Connections {
			if len(p.EmailAddresses) == 0 || p.EmailAddresses[0].Value == "" {
				continue
			}
			item := invite.ListItem{
				Email:  p.EmailAddresses[0].Value,
				Origin: invite.OriginHost,
			}
			if len(p.Names) > 0 {
				item.DisplayName = p.Names[0].DisplayName
			}
			if item.DisplayName == "" {
				item.DisplayName = item.Email
			}
			item.Subtitle = item.Email
			if len(p.Photos) > 0 {
				item.AvatarURL = p.Photos[0].URL
			}
			items = append(items, item)
		}

		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

func (s *GoogleSource) fetchPage(ctx context.Context, token, pageToken string) (*connectionsPage, error) {
	query := url.Values{
		"personFields": {"names,emailAddresses,photos"},
		"pageSize":     {peoplePageSize},
	}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	endpoint := s.baseURL + "/v1/people/me/connections?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apierrors.NewExternalServiceError("google contacts", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, apierrors.NewExternalServiceError("google contacts", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apierrors.NewExternalServiceError("google contacts", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return nil, apierrors.NewPermissionDeniedError("google contacts")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierrors.NewExternalServiceError("google contacts", fmt.Errorf("status %d", resp.StatusCode))
	}

	var page connectionsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, apierrors.NewDecodingError("google contacts", err)
	}
	return &page, nil
}

// Search filters the connection list by name or email substring.
func (s *GoogleSource) Search(ctx context.Context, query string) ([]invite.ListItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter(items, query), nil
}
