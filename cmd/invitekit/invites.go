package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loopwell/invitekit/internal/invite"
)

func newInvitesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invites",
		Short: "Manage sent and received invitations",
	}

	cmd.AddCommand(newInvitesListCmd(flags))
	cmd.AddCommand(newInvitesAcceptCmd(flags))
	cmd.AddCommand(newInvitesRevokeCmd(flags))

	return cmd
}

type invitesListOptions struct {
	incoming   bool
	jsonOutput bool
}

func newInvitesListCmd(flags *rootFlags) *cobra.Command {
	opts := &invitesListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outgoing invitations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvitesList(cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.incoming, "incoming", false, "List invitations awaiting you instead")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

type invitationJSONPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

func runInvitesList(cmd *cobra.Command, flags *rootFlags, opts *invitesListOptions) error {
	app, err := newAppContext(flags)
	if err != nil {
		return err
	}
	orch, err := app.newOrchestrator("invites list")
	if err != nil {
		return err
	}

	var items []invite.ListItem
	if opts.incoming {
		items, err = orch.IncomingInvitations(cmd.Context())
	} else {
		items, err = orch.OutgoingInvitations(cmd.Context())
	}
	if err != nil {
		return newCommandError("invites list", "fetching invitations", err,
			"Check INVITEKIT_API_BASE_URL and your credential, then retry.")
	}

	if opts.jsonOutput {
		payload := make([]invitationJSONPayload, 0, len(items))
		for _, item := range items {
			payload = append(payload, invitationJSONPayload{
				ID:     item.ID,
				Name:   item.DisplayName,
				Detail: item.Subtitle,
			})
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invitations found.")
		return nil
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tDETAIL")
	for _, item := range items {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", item.ID, item.DisplayName, item.Subtitle)
	}
	return writer.Flush()
}

func newInvitesAcceptCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept <invitation-id>",
		Short: "Accept an incoming invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			orch, err := app.newOrchestrator("invites accept")
			if err != nil {
				return err
			}
			if err := orch.AcceptInvitation(cmd.Context(), args[0]); err != nil {
				return newCommandError("invites accept", fmt.Sprintf("accepting invitation %q", args[0]), err,
					"Run 'invitekit invites list --incoming' to view invitations awaiting you.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accepted %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func newInvitesRevokeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <invitation-id>",
		Short: "Withdraw an outgoing invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			orch, err := app.newOrchestrator("invites revoke")
			if err != nil {
				return err
			}
			if err := orch.RevokeInvitation(cmd.Context(), args[0]); err != nil {
				return newCommandError("invites revoke", fmt.Sprintf("revoking invitation %q", args[0]), err,
					"Run 'invitekit invites list' to view the invitations you sent.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s\n", args[0])
			return nil
		},
	}

	return cmd
}
