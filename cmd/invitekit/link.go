package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type linkOptions struct {
	qr bool
}

func newLinkCmd(flags *rootFlags) *cobra.Command {
	opts := &linkOptions{}

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Generate a shareable invitation link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.qr, "qr", false, "Frame the link for scanning off the terminal")

	return cmd
}

func runLink(cmd *cobra.Command, flags *rootFlags, opts *linkOptions) error {
	app, err := newAppContext(flags)
	if err != nil {
		return err
	}
	orch, err := app.newOrchestrator("link")
	if err != nil {
		return err
	}

	link, err := orch.GenerateShareableLink(cmd.Context())
	if err != nil {
		return newCommandError("link", "generating the shareable link", err,
			"Check INVITEKIT_API_BASE_URL and your credential, then retry.")
	}

	if opts.qr {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 4).
			Bold(true)
		fmt.Fprintln(cmd.OutOrStdout(), box.Render(link.ShortLink))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), link.ShortLink)
	return nil
}
