package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type sendOptions struct {
	to []string
}

func newSendCmd(flags *rootFlags) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send --to user@example.com [--to another@example.com]",
		Short: "Send email invitations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, flags, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.to, "to", nil, "Email address to invite (repeatable)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runSend(cmd *cobra.Command, flags *rootFlags, opts *sendOptions) error {
	app, err := newAppContext(flags)
	if err != nil {
		return err
	}
	orch, err := app.newOrchestrator("send")
	if err != nil {
		return err
	}

	results, sendErr := orch.InviteEmails(cmd.Context(), opts.to)

	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", result.Address, result.Err)
			continue
		}
		line := fmt.Sprintf("✓ %s  %s", result.Address, result.Entry.ID)
		if result.Entry.ShortLink != "" {
			line += "  " + result.Entry.ShortLink
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	if sendErr != nil {
		return newCommandError("send", "dispatching invitations", sendErr,
			"Fix the addresses marked ✗ and retry; delivered invitations are not resent.")
	}
	return nil
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("Failed to %s: %s\n\nError: %v\n\nSuggestion: %s", e.operation, e.context, e.cause, e.suggestion)
}

func (e *commandError) Unwrap() error {
	return e.cause
}
