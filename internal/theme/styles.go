package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/loopwell/invitekit/internal/schema"
)

// Styles bundles ready-to-use terminal styles derived from one block's
// resolved tokens. Terminal hosts rebuild these per render; resolution is
// cheap and pure.
type Styles struct {
	Page            lipgloss.Style
	Title           lipgloss.Style
	Text            lipgloss.Style
	PrimaryButton   lipgloss.Style
	SecondaryButton lipgloss.Style
	Accent          lipgloss.Style
	Muted           lipgloss.Style
}

func termColor(c Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Styles derives the terminal style set for a block.
func (r *Resolver) Styles(block *schema.Theme) Styles {
	foreground := r.Foreground(block)
	accent := r.Accent(block)

	text := lipgloss.NewStyle().Foreground(termColor(foreground))

	primary := lipgloss.NewStyle().
		Foreground(termColor(r.PrimaryButtonText(block))).
		Background(termColor(r.PrimaryButtonFill(block).Lead())).
		Bold(true).
		Padding(0, 1)

	secondary := lipgloss.NewStyle().
		Foreground(termColor(r.SecondaryButtonText(block))).
		Background(termColor(r.SecondaryButtonFill(block).Lead())).
		Padding(0, 1)

	page := lipgloss.NewStyle().Foreground(termColor(foreground))
	if bg := r.Background(block); !bg.IsTransparent() {
		page = page.Background(termColor(bg))
	}

	return Styles{
		Page:            page,
		Title:           text.Bold(true),
		Text:            text,
		PrimaryButton:   primary,
		SecondaryButton: secondary,
		Accent:          lipgloss.NewStyle().Foreground(termColor(accent)).Bold(true),
		Muted:           text.Faint(true),
	}
}

// NodeStyle builds the style for one element node from its own theme plus
// any border declared in its style map.
func (r *Resolver) NodeStyle(node *schema.Node) lipgloss.Style {
	if node == nil {
		return lipgloss.NewStyle()
	}

	style := lipgloss.NewStyle().Foreground(termColor(r.Foreground(node.Theme)))
	if node.Type == schema.TypeButton {
		style = style.
			Foreground(termColor(r.PrimaryButtonText(node.Theme))).
			Background(termColor(r.PrimaryButtonFill(node.Theme).Lead())).
			Bold(true).
			Padding(0, 1)
	}

	borderToken := node.Style["border"]
	border := Border{}
	if borderToken != "" {
		border, _ = ParseBorder(borderToken)
	} else {
		border = r.BorderOf(node.Theme)
	}
	if border.Width > 0 && !border.Color.IsTransparent() {
		style = style.
			Border(lipgloss.NormalBorder()).
			BorderForeground(termColor(border.Color))
	}

	return style
}
