package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loopwell/invitekit/internal/locale"
	"github.com/loopwell/invitekit/internal/schema"
)

type renderOptions struct {
	jsonOutput bool
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch the widget configuration and print its element tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the raw configuration as JSON")

	return cmd
}

func runRender(cmd *cobra.Command, flags *rootFlags, opts *renderOptions) error {
	app, err := newAppContext(flags)
	if err != nil {
		return err
	}
	componentID, err := app.componentID("render")
	if err != nil {
		return err
	}

	envelope, err := app.Client.WidgetConfiguration(cmd.Context(), componentID, app.Settings.Locale)
	if err != nil {
		return newCommandError("render", "fetching the widget configuration", err,
			"Check INVITEKIT_API_BASE_URL and your credential, then retry.")
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(envelope.Configuration)
	}

	return renderOutline(cmd.OutOrStdout(), envelope)
}

func renderOutline(w io.Writer, envelope *schema.Envelope) error {
	cfg := envelope.Configuration
	loc := locale.NewLocalizer(cfg)

	fmt.Fprintf(w, "Configuration: %s\n", cfg.ID)
	if envelope.DeploymentID != "" {
		fmt.Fprintf(w, "Deployment:    %s\n", envelope.DeploymentID)
	}
	if title, ok := cfg.GetString("title"); ok && title != "" {
		fmt.Fprintf(w, "Title:         %s\n", title)
	}
	if len(cfg.LocalizedStrings) > 0 {
		fmt.Fprintf(w, "Strings:       %d localized\n", len(cfg.LocalizedStrings))
	}

	root, ok := cfg.PageData("page")
	if !ok {
		fmt.Fprintln(w, "\n(no page tree)")
		return nil
	}

	fmt.Fprintln(w)
	writeNodeOutline(w, root, loc, 0)
	return nil
}

// writeNodeOutline prints one node per line, indented by depth, with the
// details a widget author debugs by: subtype, resolved text, group, and
// hidden markers.
func writeNodeOutline(w io.Writer, node *schema.Node, loc *locale.Localizer, depth int) {
	if node == nil {
		return
	}

	label := node.Type
	if node.Subtype != "" {
		label += "/" + node.Subtype
	}

	var details []string
	if text := outlineText(node, loc); text != "" {
		details = append(details, fmt.Sprintf("%q", text))
	}
	if node.Group != "" {
		details = append(details, "group="+node.Group)
	}
	if node.Hidden {
		details = append(details, "hidden")
	}

	line := fmt.Sprintf("%s- %s", strings.Repeat("  ", depth), label)
	if len(details) > 0 {
		line += "  " + strings.Join(details, "  ")
	}
	fmt.Fprintln(w, line)

	for _, child := range node.Children {
		writeNodeOutline(w, child, loc, depth+1)
	}
}

func outlineText(node *schema.Node, loc *locale.Localizer) string {
	if key, ok := node.AttrString("text_key"); ok {
		return loc.Text(key)
	}
	if text, ok := node.AttrString("text"); ok {
		return text
	}
	text, _ := node.AttrString("label")
	return text
}
