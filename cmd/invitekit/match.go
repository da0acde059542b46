package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loopwell/invitekit/internal/client"
)

type matchOptions struct {
	jsonOutput bool
}

func newMatchCmd(flags *rootFlags) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Probe for a deferred invitation matching this device",
		Long: `Match asks the backend whether an invitation link was opened on the web
before the app was installed on this device. On a match the backend returns
the invitation context so onboarding can greet the invitee by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runMatch(cmd *cobra.Command, flags *rootFlags, opts *matchOptions) error {
	app, err := newAppContext(flags)
	if err != nil {
		return err
	}

	match, err := app.Client.MatchDeferredLink(cmd.Context(), localFingerprint())
	if err != nil {
		return newCommandError("match", "probing for a deferred invitation", err,
			"Check INVITEKIT_API_BASE_URL and your credential, then retry.")
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(match)
	}

	out := cmd.OutOrStdout()
	if !match.Matched {
		fmt.Fprintln(out, "No deferred invitation matched this device.")
		return nil
	}

	fmt.Fprintf(out, "Matched (confidence: %s)\n", match.Confidence)
	keys := make([]string, 0, len(match.Context))
	for key := range match.Context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "  %s: %s\n", key, match.Context[key])
	}
	return nil
}

// localFingerprint gathers the coarse device traits the backend matches on.
// None of them identify the user; they narrow candidate invitations the same
// way the web click recorded them.
func localFingerprint() client.DeviceFingerprint {
	language := os.Getenv("LANG")
	if idx := strings.IndexByte(language, '.'); idx >= 0 {
		language = language[:idx]
	}
	return client.DeviceFingerprint{
		Platform: runtime.GOOS,
		Language: language,
		Timezone: time.Now().Location().String(),
	}
}
