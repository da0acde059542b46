package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath  string
	componentID string
	locale      string
	repoPath    string
	bookPath    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "invitekit",
		Short:         "InviteKit renders server-driven invitation surfaces in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand launches the interactive surface.
			return runSurface(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a settings file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&flags.componentID, "component", "", "Widget component id (overrides settings)")
	cmd.PersistentFlags().StringVar(&flags.locale, "locale", "", "Locale tag for localized configuration (overrides settings)")
	cmd.Flags().StringVar(&flags.repoPath, "repo", "", "Git repository whose commit authors fill the contacts picker (default: current directory)")
	cmd.Flags().StringVar(&flags.bookPath, "file", "", "YAML address book backing the contacts picker")

	cmd.AddCommand(newRenderCmd(flags))
	cmd.AddCommand(newSendCmd(flags))
	cmd.AddCommand(newLinkCmd(flags))
	cmd.AddCommand(newContactsCmd(flags))
	cmd.AddCommand(newInvitesCmd(flags))
	cmd.AddCommand(newMatchCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
