package tui

import (
	"fmt"
	"strings"

	"github.com/loopwell/invitekit/internal/client"
	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/internal/schema"
	"github.com/loopwell/invitekit/internal/theme"
)

// Well-known configuration props the terminal host reads.
const (
	pagePropKey  = "page"
	themePropKey = "theme"
)

// treeRenderer walks one server-authored element tree and renders it for
// the terminal. It carries everything a single frame needs; callers build a
// fresh one per render.
type treeRenderer struct {
	resolver    *theme.Resolver
	hidden      map[string]bool
	strings     map[string]string
	link        *client.ShareableLink
	suggestions []invite.ListItem
	cursor      int
	cursorOn    bool
	rowStatus   func(source, key string) string
}

// widgetRenderers is the closed dispatch table for specialized blocks,
// keyed by subtype. Unknown subtypes render their children only.
var widgetRenderers = map[string]func(*treeRenderer, *schema.Node) string{
	schema.SubtypeEmailInvitations: (*treeRenderer).renderEmailWidget,
	schema.SubtypeShareLink:        (*treeRenderer).renderLinkWidget,
	schema.SubtypeQRCode:           (*treeRenderer).renderLinkWidget,
	schema.SubtypeContactsList:     (*treeRenderer).renderContactsWidget,
	schema.SubtypeFindFriends:      (*treeRenderer).renderFindFriendsWidget,
	schema.SubtypeSuggestions:      (*treeRenderer).renderSuggestionsWidget,
}

// render draws one node and its subtree. Invisible nodes draw nothing,
// never an empty container.
func (r *treeRenderer) render(node *schema.Node) string {
	if !node.Visible(r.hidden) {
		return ""
	}

	if node.Type == schema.TypeWidget {
		if fn, ok := widgetRenderers[node.Subtype]; ok {
			return fn(r, node)
		}
		return r.renderChildren(node)
	}

	switch node.Type {
	case schema.TypeText:
		return r.renderText(node)
	case schema.TypeButton:
		return r.renderButton(node)
	case schema.TypeImage:
		return r.renderImage(node)
	case schema.TypeSpacer:
		return ""
	case schema.TypeRow:
		return r.renderRow(node)
	case schema.TypeSection:
		return r.renderSection(node)
	default:
		return r.renderChildren(node)
	}
}

// renderChildren joins the visible children vertically.
func (r *treeRenderer) renderChildren(node *schema.Node) string {
	var parts []string
	for _, child := range node.VisibleChildren(r.hidden) {
		if rendered := r.render(child); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n")
}

// renderRow joins the visible children horizontally.
func (r *treeRenderer) renderRow(node *schema.Node) string {
	var cells []string
	for _, child := range node.VisibleChildren(r.hidden) {
		if rendered := r.render(child); rendered != "" {
			cells = append(cells, rendered)
		}
	}
	return strings.Join(cells, "  ")
}

func (r *treeRenderer) renderSection(node *schema.Node) string {
	children := r.renderChildren(node)
	title := r.nodeText(node)
	if title == "" {
		if heading, ok := node.AttrString("title"); ok {
			title = heading
		}
	}
	if title == "" {
		return children
	}
	heading := r.resolver.Styles(node.Theme).Title.Render(title)
	if children == "" {
		return heading
	}
	return heading + "\n" + children
}

func (r *treeRenderer) renderText(node *schema.Node) string {
	text := r.nodeText(node)
	if text == "" {
		return ""
	}
	style := r.resolver.NodeStyle(node)
	if variant, _ := node.AttrString("variant"); variant == "title" || variant == "heading" {
		style = style.Bold(true)
	}
	return style.Render(text)
}

func (r *treeRenderer) renderButton(node *schema.Node) string {
	label := r.nodeText(node)
	if label == "" {
		label, _ = node.AttrString("label")
	}
	if label == "" {
		return ""
	}
	return r.resolver.NodeStyle(node).Render(label)
}

// renderImage draws the alt text; terminals get no pixels.
func (r *treeRenderer) renderImage(node *schema.Node) string {
	alt, _ := node.AttrString("alt")
	if alt == "" {
		return ""
	}
	return mutedStyle.Render(fmt.Sprintf("[%s]", alt))
}

// nodeText resolves the node's text: a localized string when text_key is
// declared, else the text attribute.
func (r *treeRenderer) nodeText(node *schema.Node) string {
	if key, ok := node.AttrString("text_key"); ok {
		if localized, ok := r.strings[key]; ok {
			return localized
		}
	}
	text, _ := node.AttrString("text")
	return text
}

// Specialized widget blocks. Each renders the affordance the terminal
// offers for it; data the model already fetched renders inline.

func (r *treeRenderer) renderEmailWidget(node *schema.Node) string {
	prompt := r.nodeText(node)
	if prompt == "" {
		prompt = "Invite by email"
	}
	return r.affordance(node, prompt, "press e")
}

func (r *treeRenderer) renderContactsWidget(node *schema.Node) string {
	prompt := r.nodeText(node)
	if prompt == "" {
		prompt = "Invite from your contacts"
	}
	return r.affordance(node, prompt, "press c")
}

func (r *treeRenderer) renderFindFriendsWidget(node *schema.Node) string {
	prompt := r.nodeText(node)
	if prompt == "" {
		prompt = "Find people you know"
	}
	return r.affordance(node, prompt, "press /")
}

func (r *treeRenderer) renderLinkWidget(node *schema.Node) string {
	prompt := r.nodeText(node)
	if prompt == "" {
		prompt = "Share your invite link"
	}
	if r.link != nil {
		styles := r.resolver.Styles(node.Theme)
		return fmt.Sprintf("%s  %s",
			styles.Text.Render(prompt),
			styles.Accent.Render(r.link.ShortLink))
	}
	return r.affordance(node, prompt, "press q")
}

func (r *treeRenderer) renderSuggestionsWidget(node *schema.Node) string {
	if len(r.suggestions) == 0 {
		return ""
	}
	heading := r.nodeText(node)
	if heading == "" {
		heading = "People you may know"
	}
	rows := renderRows(r.suggestions, r.cursor, r.cursorOn, func(key string) string {
		return r.rowStatus(invite.SourceOther, key)
	})
	return r.resolver.Styles(node.Theme).Title.Render(heading) + "\n" + rows
}

func (r *treeRenderer) affordance(node *schema.Node, prompt, hint string) string {
	return fmt.Sprintf("%s  %s",
		r.resolver.Styles(node.Theme).Text.Render(prompt),
		hintStyle.Render(hint))
}
