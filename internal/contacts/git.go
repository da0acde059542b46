package contacts

import (
	"context"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

// GitSource lists the commit authors of a local repository as invitable
// contacts, deduplicated by email with the most recently active author
// first. It is the reference contact provider for the CLI host.
type GitSource struct {
	path string
}

// NewGitSource creates a source over the repository at path.
func NewGitSource(path string) *GitSource {
	return &GitSource{path: path}
}

// List walks the history reachable from HEAD and collects one entry per
// author email.
func (s *GitSource) List(ctx context.Context) ([]invite.ListItem, error) {
	repo, err := git.PlainOpen(s.path)
	if err != nil {
		return nil, apierrors.NewExternalServiceError("git", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, apierrors.NewExternalServiceError("git", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, apierrors.NewExternalServiceError("git", err)
	}
	defer iter.Close()

	type author struct {
		item invite.ListItem
		when time.Time
	}
	latest := make(map[string]author)

	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		sig := commit.Author
		if sig.Email == "" {
			return nil
		}
		if seen, ok := latest[sig.Email]; ok && !sig.When.After(seen.when) {
			return nil
		}
		latest[sig.Email] = author{
			item: invite.ListItem{
				DisplayName: sig.Name,
				Subtitle:    sig.Email,
				Email:       sig.Email,
				Origin:      invite.OriginHost,
			},
			when: sig.When,
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apierrors.NewExternalServiceError("git", err)
	}

	authors := make([]author, 0, len(latest))
	for _, a := range latest {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].when.After(authors[j].when) })

	items := make([]invite.ListItem, 0, len(authors))
	for _, a := range authors {
		items = append(items, a.item)
	}
	return items, nil
}

// Search filters the author list by name or email substring.
func (s *GitSource) Search(ctx context.Context, query string) ([]invite.ListItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter(items, query), nil
}
