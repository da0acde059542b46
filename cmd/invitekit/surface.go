package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loopwell/invitekit/internal/contacts"
	"github.com/loopwell/invitekit/internal/flow"
	"github.com/loopwell/invitekit/internal/tui"
)

// runSurface launches the interactive invitation surface.
func runSurface(cmd *cobra.Command, flags *rootFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal; run 'invitekit --help' for scriptable commands")
	}

	app, err := newAppContext(flags)
	if err != nil {
		return err
	}

	componentID, err := app.componentID("launch")
	if err != nil {
		return err
	}

	orch, err := app.newOrchestrator("launch")
	if err != nil {
		return err
	}

	session, err := flow.NewSession(flow.Config{
		ComponentID:    componentID,
		Locale:         app.Settings.Locale,
		Store:          app.Store,
		Fetcher:        app.Client,
		Orchestrator:   orch,
		Contacts:       pickerSource(flags),
		GoogleContacts: googleSource(),
		Logger:         app.Logger,
	})
	if err != nil {
		return err
	}

	m := tui.NewModel(cmd.Context(), session, app.Bus)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run invitation surface: %w", err)
	}

	return nil
}

// pickerSource resolves the contact source behind the contacts picker: the
// address book when one is given, otherwise the git repository's commit
// authors.
func pickerSource(flags *rootFlags) contacts.Source {
	if flags.bookPath != "" {
		return contacts.NewFileSource(flags.bookPath)
	}
	repo := flags.repoPath
	if repo == "" {
		repo = "."
	}
	return contacts.NewGitSource(repo)
}

// googleSource builds the Google contacts source when a People API token is
// supplied through the environment. The OAuth flow itself stays outside the
// CLI.
func googleSource() contacts.Source {
	token := os.Getenv("INVITEKIT_GOOGLE_TOKEN")
	if token == "" {
		return nil
	}
	return contacts.NewGoogleSource(staticToken(token), nil)
}

type staticToken string

func (t staticToken) Token(context.Context) (string, error) {
	return string(t), nil
}
