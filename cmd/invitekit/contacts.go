package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loopwell/invitekit/internal/contacts"
	"github.com/loopwell/invitekit/internal/invite"
)

type contactsOptions struct {
	repoPath   string
	bookPath   string
	query      string
	jsonOutput bool
}

func newContactsCmd(flags *rootFlags) *cobra.Command {
	opts := &contactsOptions{}

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List the contacts a picker surface would offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContacts(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoPath, "repo", "", "Git repository whose commit authors are listed (default: current directory)")
	cmd.Flags().StringVar(&opts.bookPath, "file", "", "YAML address book to list instead")
	cmd.Flags().StringVar(&opts.query, "query", "", "Filter by name or email substring")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runContacts(cmd *cobra.Command, opts *contactsOptions) error {
	if opts.repoPath != "" && opts.bookPath != "" {
		return newCommandError("contacts", "choosing a source",
			errors.New("--repo and --file are mutually exclusive"),
			"Pass one source: a git repository or a YAML address book.")
	}

	var source contacts.Source
	if opts.bookPath != "" {
		source = contacts.NewFileSource(opts.bookPath)
	} else {
		repo := opts.repoPath
		if repo == "" {
			repo = "."
		}
		source = contacts.NewGitSource(repo)
	}

	items, err := source.Search(cmd.Context(), opts.query)
	if err != nil {
		return newCommandError("contacts", "listing contacts", err,
			"Check that the source exists: a git repository with history, or a readable contacts file.")
	}

	if opts.jsonOutput {
		return renderContactsJSON(cmd, items)
	}
	return renderContactsTable(cmd, items)
}

func renderContactsTable(cmd *cobra.Command, items []invite.ListItem) error {
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No contacts found.")
		return nil
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tEMAIL\tPHONE")
	for _, item := range items {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", item.DisplayName, item.Email, item.Phone)
	}
	return writer.Flush()
}

type contactJSONPayload struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func renderContactsJSON(cmd *cobra.Command, items []invite.ListItem) error {
	payload := make([]contactJSONPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, contactJSONPayload{
			Name:  item.DisplayName,
			Email: item.Email,
			Phone: item.Phone,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
