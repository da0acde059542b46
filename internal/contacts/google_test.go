package contacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopwell/invitekit/pkg/apierrors"
)

type staticToken string

func (t staticToken) Token(context.Context) (string, error) { return string(t), nil }

type failingToken struct{}

func (failingToken) Token(context.Context) (string, error) {
	return "", errors.New("sign-in expired")
}

func googleSource(t *testing.T, handler http.Handler, tokens TokenSource) *GoogleSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	source := NewGoogleSource(tokens, server.Client())
	source.baseURL = server.URL
	return source
}

func TestGoogleSourceListsConnections(t *testing.T) {
	t.Parallel()

	source := googleSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/people/me/connections", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "names,emailAddresses,photos", r.URL.Query().Get("personFields"))

		fmt.Fprint(w, `{
			"connections": [
				{
					"resourceName": "people/c1",
					"names": [{"displayName": "Ada"}],
					"emailAddresses": [{"value": "ada@example.com"}],
					"photos": [{"url": "https://cdn.example/ada.png"}]
				},
				{
					"resourceName": "people/c2",
					"names": [{"displayName": "No Email"}]
				}
			]
		}`)
	}), staticToken("tok-1"))

	items, err := source.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Ada", items[0].DisplayName)
	assert.Equal(t, "ada@example.com", items[0].Email)
	assert.Equal(t, "https://cdn.example/ada.png", items[0].AvatarURL)
}

func TestGoogleSourceFollowsPagination(t *testing.T) {
	t.Parallel()

	source := googleSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageToken") {
		case "":
			fmt.Fprint(w, `{
				"connections": [{"emailAddresses": [{"value": "a@example.com"}]}],
				"nextPageToken": "page-2"
			}`)
		case "page-2":
			fmt.Fprint(w, `{
				"connections": [{"emailAddresses": [{"value": "b@example.com"}]}]
			}`)
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	}), staticToken("tok-1"))

	items, err := source.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a@example.com", items[0].Email)
	assert.Equal(t, "b@example.com", items[1].Email)
}

func TestGoogleSourceForbiddenIsPermissionDenied(t *testing.T) {
	t.Parallel()

	source := googleSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}), staticToken("tok-1"))

	_, err := source.List(context.Background())
	assert.True(t, apierrors.IsPermissionDenied(err))
}

func TestGoogleSourceTokenFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	source := googleSource(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls++
	}), failingToken{})

	var extErr *apierrors.ExternalServiceError
	_, err := source.List(context.Background())
	require.ErrorAs(t, err, &extErr)
	assert.Zero(t, calls)
}

func TestGoogleSourceServerError(t *testing.T) {
	t.Parallel()

	source := googleSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), staticToken("tok-1"))

	var extErr *apierrors.ExternalServiceError
	_, err := source.List(context.Background())
	require.ErrorAs(t, err, &extErr)
}
