package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Static chrome styles. Server-authored content is styled through the theme
// resolver instead; these cover only the host's own frame.
var (
	// Colors
	primaryColor = lipgloss.Color("99")  // Purple
	successColor = lipgloss.Color("42")  // Green
	errorColor   = lipgloss.Color("196") // Red
	mutedColor   = lipgloss.Color("245") // Gray
	accentColor  = lipgloss.Color("212") // Pink

	// Title style
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			PaddingLeft(2).
			PaddingRight(2)

	// Header style
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(mutedColor).
			PaddingBottom(1).
			MarginBottom(1)

	// Section heading style
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1)

	// List row styles
	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			PaddingRight(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				PaddingRight(2).
				Foreground(accentColor).
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderLeft(true).
				BorderForeground(primaryColor)

	// Row status styles
	statusOKStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	statusFailStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// Footer style
	footerStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(mutedColor).
			PaddingTop(1).
			MarginTop(1)

	// Error banner style
	errorBannerStyle = lipgloss.NewStyle().
				Foreground(errorColor).
				Background(lipgloss.Color("52")). // Dark red background
				Bold(true).
				Padding(0, 2).
				MarginBottom(1)

	// Hint style for key affordances rendered inside server content
	hintStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Muted text style
	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Empty state style
	emptyStateStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			PaddingTop(1).
			PaddingBottom(1)

	// Shareable link box
	linkBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Bold(true).
			Padding(1, 4).
			MarginTop(1).
			MarginBottom(1)

	// Spinner style
	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)
)

// applyMaxWidth applies a maximum width to the width-sensitive styles.
func applyMaxWidth(width int) {
	itemStyle = itemStyle.MaxWidth(width - 4)
	selectedItemStyle = selectedItemStyle.MaxWidth(width - 4)
	headerStyle = headerStyle.Width(width - 2)
	footerStyle = footerStyle.Width(width - 2)
}
