// Package contacts supplies invitable contact lists for the picker
// surfaces. Platform contact stores stay on the host side behind the Source
// interface; the sources here cover the CLI host (git commit authors, a
// YAML address book) and Google contacts over a host-supplied token.
package contacts

import (
	"context"
	"strings"

	"github.com/loopwell/invitekit/internal/invite"
)

// Source supplies a contact list and substring search over it.
type Source interface {
	List(ctx context.Context) ([]invite.ListItem, error)
	Search(ctx context.Context, query string) ([]invite.ListItem, error)
}

// filter returns the items whose name or email contains query, matched
// case-insensitively. An empty query matches everything.
func filter(items []invite.ListItem, query string) []invite.ListItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	matched := make([]invite.ListItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.DisplayName), query) ||
			strings.Contains(strings.ToLower(item.Email), query) {
			matched = append(matched, item)
		}
	}
	return matched
}
