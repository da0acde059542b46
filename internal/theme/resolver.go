// Package theme resolves server-authored style tokens into concrete
// colors, fills, and borders. Resolution walks a fixed cascade: the
// block's own options, then the global theme's options, then the fixed
// palette fields, then a hardcoded default. Resolvers are pure; callers
// invoke them on every render.
package theme

import (
	"github.com/loopwell/invitekit/internal/schema"
)

// Hardcoded defaults, the last rung of every cascade.
const (
	DefaultBackground    = "#ffffff"
	DefaultForeground    = "#1f2430"
	DefaultPrimaryFill   = "#3b82f6"
	DefaultPrimaryText   = "#ffffff"
	DefaultSecondaryFill = "#e5e7eb"
	DefaultSecondaryText = "#1f2430"
	DefaultAccent        = "#6366f1"
)

var (
	backgroundKeys    = []string{"background", "background_color", "surface"}
	foregroundKeys    = []string{"foreground", "text_color", "content"}
	primaryFillKeys   = []string{"primary_button_fill", "button.fill", "primary_fill"}
	primaryTextKeys   = []string{"primary_button_text", "button.text_color", "primary_text"}
	secondaryFillKeys = []string{"secondary_button_fill", "secondary_fill"}
	secondaryTextKeys = []string{"secondary_button_text", "secondary_text"}
	borderKeys        = []string{"border", "border_style"}
	accentKeys        = []string{"accent", "highlight"}
)

// Resolver answers token lookups against one global theme. A nil global
// theme is valid; every lookup then falls through to palettes and defaults.
type Resolver struct {
	global *schema.Theme
}

// NewResolver builds a resolver over the configuration's global theme.
func NewResolver(global *schema.Theme) *Resolver {
	return &Resolver{global: global}
}

// Token scans the candidate keys through the block options then the global
// options, returning the first non-empty value, else fallback. Empty option
// values are skipped, not treated as present.
func (r *Resolver) Token(block *schema.Theme, candidates []string, fallback string) string {
	themes := []*schema.Theme{block}
	if r != nil {
		themes = append(themes, r.global)
	}
	for _, t := range themes {
		for _, key := range candidates {
			if value, ok := t.Option(key); ok {
				return value
			}
		}
	}
	return fallback
}

func (r *Resolver) paletteValue(block *schema.Theme, field func(schema.Palette) string) string {
	if block != nil {
		if v := field(block.Colors); v != "" {
			return v
		}
	}
	if r != nil && r.global != nil {
		if v := field(r.global.Colors); v != "" {
			return v
		}
	}
	return ""
}

func (r *Resolver) color(block *schema.Theme, candidates []string, field func(schema.Palette) string, fallback string) Color {
	raw := r.Token(block, candidates, "")
	if raw == "" {
		raw = r.paletteValue(block, field)
	}
	if raw != "" {
		if c, ok := ParseColor(raw); ok {
			return c
		}
	}
	c, _ := ParseColor(fallback)
	return c
}

func (r *Resolver) fill(block *schema.Theme, candidates []string, field func(schema.Palette) string, fallback string) Fill {
	raw := r.Token(block, candidates, "")
	if raw == "" {
		raw = r.paletteValue(block, field)
	}
	if raw != "" {
		if f, ok := ParseFill(raw); ok {
			return f
		}
	}
	c, _ := ParseColor(fallback)
	return Fill{Solid: c}
}

// Background resolves the surface color behind a block.
func (r *Resolver) Background(block *schema.Theme) Color {
	return r.color(block, backgroundKeys, func(p schema.Palette) string { return p.Background }, DefaultBackground)
}

// Foreground resolves the content color of a block.
func (r *Resolver) Foreground(block *schema.Theme) Color {
	return r.color(block, foregroundKeys, func(p schema.Palette) string { return p.Foreground }, DefaultForeground)
}

// PrimaryButtonFill resolves the paint of the main call-to-action, gradient
// tokens included.
func (r *Resolver) PrimaryButtonFill(block *schema.Theme) Fill {
	return r.fill(block, primaryFillKeys, func(p schema.Palette) string { return p.Primary }, DefaultPrimaryFill)
}

// PrimaryButtonText resolves the label color of the main call-to-action.
func (r *Resolver) PrimaryButtonText(block *schema.Theme) Color {
	return r.color(block, primaryTextKeys, func(p schema.Palette) string { return p.PrimaryText }, DefaultPrimaryText)
}

// SecondaryButtonFill resolves the paint of secondary actions.
func (r *Resolver) SecondaryButtonFill(block *schema.Theme) Fill {
	return r.fill(block, secondaryFillKeys, func(p schema.Palette) string { return p.Secondary }, DefaultSecondaryFill)
}

// SecondaryButtonText resolves the label color of secondary actions.
func (r *Resolver) SecondaryButtonText(block *schema.Theme) Color {
	return r.color(block, secondaryTextKeys, func(p schema.Palette) string { return p.SecondaryText }, DefaultSecondaryText)
}

// Accent resolves the highlight color.
func (r *Resolver) Accent(block *schema.Theme) Color {
	return r.color(block, accentKeys, func(p schema.Palette) string { return p.Accent }, DefaultAccent)
}

// BorderOf resolves the border token of a block. Absent or malformed
// tokens degrade to the zero border (width 0, transparent).
func (r *Resolver) BorderOf(block *schema.Theme) Border {
	raw := r.Token(block, borderKeys, "")
	if raw == "" {
		raw = r.paletteValue(block, func(p schema.Palette) string { return p.Border })
		if raw != "" {
			// A bare palette color means a hairline border.
			if color, ok := ParseColor(raw); ok {
				return Border{Width: 1, Style: "solid", Color: color}
			}
			return Border{}
		}
	}
	border, _ := ParseBorder(raw)
	return border
}
