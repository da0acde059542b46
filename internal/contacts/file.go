package contacts

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/internal/settings"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

type fileContact struct {
	Name  string `yaml:"name" validate:"required"`
	Email string `yaml:"email" validate:"omitempty,email"`
	Phone string `yaml:"phone" validate:"omitempty,e164"`
}

type addressBook struct {
	Contacts []fileContact `yaml:"contacts"`
}

// FileSource reads a YAML address book. Every entry carries a name and at
// least one of email or phone.
type FileSource struct {
	path string
}

// NewFileSource creates a source over the address book at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// List parses and validates the address book.
func (s *FileSource) List(_ context.Context) ([]invite.ListItem, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apierrors.NewExternalServiceError("address book", err)
	}

	var book addressBook
	if err := yaml.Unmarshal(raw, &book); err != nil {
		return nil, apierrors.NewDecodingError("address book", err)
	}

	items := make([]invite.ListItem, 0, len(book.Contacts))
	for i, contact := range book.Contacts {
		field := fmt.Sprintf("contacts[%d]", i)
		if err := settings.GetValidator().Struct(contact); err != nil {
			return nil, apierrors.NewValidationError(field, "invalid address book entry", err)
		}
		if contact.Email == "" && contact.Phone == "" {
			return nil, apierrors.NewValidationError(field, "entry needs an email or a phone number", errors.New("no reachable address"))
		}

		subtitle := contact.Email
		if subtitle == "" {
			subtitle = contact.Phone
		}
		items = append(items, invite.ListItem{
			DisplayName: contact.Name,
			Subtitle:    subtitle,
			Email:       contact.Email,
			Phone:       contact.Phone,
			Origin:      invite.OriginHost,
		})
	}
	return items, nil
}

// Search filters the address book by name or email substring.
func (s *FileSource) Search(ctx context.Context, query string) ([]invite.ListItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter(items, query), nil
}
