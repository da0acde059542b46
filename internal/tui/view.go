package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/loopwell/invitekit/internal/flow"
	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/internal/schema"
	"github.com/loopwell/invitekit/internal/theme"
)

// View renders the current model state.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.session.State() {
	case flow.StateEmailEntry:
		return m.renderEmailEntry()
	case flow.StateContactsPicker:
		return m.renderPicker("Invite from contacts", m.contacts, invite.SourceContacts)
	case flow.StateGoogleContactsPicker:
		return m.renderPicker("Invite Google contacts", m.googleContacts, invite.SourceGoogle)
	case flow.StateQRCode:
		return m.renderLinkView()
	default:
		return m.renderMain()
	}
}

// renderMain renders the main surface: the server-authored tree plus the
// host's own sections.
func (m Model) renderMain() string {
	snap := m.session.Snapshot()

	var content strings.Builder
	content.WriteString(m.renderHeader(snap))
	content.WriteString("\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n")
	}

	switch {
	case snap.Loading:
		content.WriteString(fmt.Sprintf("%s Loading configuration...", m.spinner.View()))
		content.WriteString("\n")
	case snap.Configuration == nil:
		content.WriteString(emptyStateStyle.Render("Nothing to show. Press r to retry."))
		content.WriteString("\n")
	default:
		if tree := m.renderTree(snap); tree != "" {
			content.WriteString(tree)
			content.WriteString("\n")
		}
	}

	if m.searchingPeople || len(m.people) > 0 {
		content.WriteString(m.renderPeopleSection())
		content.WriteString("\n")
	} else if suggestions := m.visibleSuggestions(); len(suggestions) > 0 && !m.treeHasSuggestions(snap) {
		content.WriteString(sectionStyle.Render("People you may know"))
		content.WriteString("\n")
		content.WriteString(renderRows(suggestions, m.cursor, true, func(key string) string {
			return m.rowStatus(invite.SourceOther, key)
		}))
		content.WriteString("\n")
	}

	if len(m.outgoing) > 0 {
		content.WriteString(m.renderOutgoing())
		content.WriteString("\n")
	}

	hints := []string{"e: email", "c: contacts", "g: google", "q: link", "/: search", "r: refresh"}
	if m.showError {
		hints = append(hints, "x: dismiss error")
	}
	hints = append(hints, "esc: close")
	content.WriteString(m.renderFooter(hints))

	return content.String()
}

// renderTree renders the configuration's page tree through the closed
// dispatch table, filtered by the state's hidden groups.
func (m Model) renderTree(snap flow.Snapshot) string {
	root, ok := snap.Configuration.PageData(pagePropKey)
	if !ok {
		return ""
	}
	global, _ := snap.Configuration.GetTheme(themePropKey)

	r := &treeRenderer{
		resolver:    theme.NewResolver(global),
		hidden:      m.session.HiddenGroups(),
		strings:     snap.Configuration.LocalizedStrings,
		link:        snap.Link,
		suggestions: m.visibleSuggestions(),
		cursor:      m.cursor,
		cursorOn:    !m.searchingPeople && len(m.people) == 0,
		rowStatus:   m.rowStatus,
	}
	return r.render(root)
}

// treeHasSuggestions reports whether the page tree renders the suggestion
// feed itself, so the fallback section stays out of its way.
func (m Model) treeHasSuggestions(snap flow.Snapshot) bool {
	if snap.Configuration == nil {
		return false
	}
	root, ok := snap.Configuration.PageData(pagePropKey)
	if !ok {
		return false
	}
	return root.FindBySubtype(schema.SubtypeSuggestions) != nil
}

// renderPeopleSection renders the member search input and its results.
func (m Model) renderPeopleSection() string {
	var content strings.Builder
	content.WriteString(sectionStyle.Render("Find people"))
	content.WriteString("\n")
	content.WriteString(m.peopleInput.View())
	content.WriteString("\n")

	switch {
	case m.searchingPeople:
		content.WriteString(hintStyle.Render("enter: search  esc: cancel"))
	case len(m.people) == 0:
		content.WriteString(emptyStateStyle.Render("No one found."))
	default:
		content.WriteString(renderRows(m.people, m.cursor, true, func(key string) string {
			return m.rowStatus(invite.SourceOther, key)
		}))
	}
	return content.String()
}

// renderOutgoing renders the most recent sent invitations.
func (m Model) renderOutgoing() string {
	var content strings.Builder
	content.WriteString(sectionStyle.Render("Sent invitations"))
	content.WriteString("\n")

	shown := m.outgoing
	const maxRows = 5
	if len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	for _, item := range shown {
		line := item.DisplayName
		if item.Subtitle != "" {
			line = fmt.Sprintf("%s  %s", line, item.Subtitle)
		}
		content.WriteString(mutedStyle.PaddingLeft(2).Render(line))
		content.WriteString("\n")
	}
	if len(m.outgoing) > maxRows {
		content.WriteString(hintStyle.PaddingLeft(2).Render(fmt.Sprintf("and %d more", len(m.outgoing)-maxRows)))
		content.WriteString("\n")
	}
	return strings.TrimRight(content.String(), "\n")
}

// renderEmailEntry renders the email compose surface.
func (m Model) renderEmailEntry() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("Invite by email"))
	content.WriteString("\n\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n")
	}

	content.WriteString("Email addresses, separated by commas:")
	content.WriteString("\n")
	content.WriteString(m.emailInput.View())
	content.WriteString("\n")

	tracker := m.orch.Tracker(invite.SourceEmail)
	if tracker.AnyLoading() {
		content.WriteString(fmt.Sprintf("\n%s Sending...\n", m.spinner.View()))
	}

	for _, result := range m.emailResults {
		status := m.rowStatus(invite.SourceEmail, result.Address)
		if status == "" && result.Err != nil {
			status = statusFailStyle.Render("✗ " + result.Err.Error())
		}
		content.WriteString(fmt.Sprintf("  %s  %s\n", result.Address, status))
	}

	content.WriteString(m.renderFooter([]string{"enter: send", "esc: back"}))
	return content.String()
}

// renderPicker renders one contact picker surface.
func (m Model) renderPicker(title string, items []invite.ListItem, source string) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(title))
	content.WriteString("\n\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n")
	}

	content.WriteString(m.searchInput.View())
	content.WriteString("\n")

	switch {
	case m.loadingList:
		content.WriteString(fmt.Sprintf("\n%s Loading contacts...\n", m.spinner.View()))
	default:
		filtered := filterItems(items, m.searchInput.Value())
		if len(filtered) == 0 {
			content.WriteString(emptyStateStyle.Render("No contacts found."))
			content.WriteString("\n")
		} else {
			content.WriteString(renderRows(filtered, m.cursor, true, func(key string) string {
				return m.rowStatus(source, key)
			}))
			content.WriteString("\n")
		}
	}

	content.WriteString(m.renderFooter([]string{"↑/↓: navigate", "enter: invite", "ctrl+r: reload", "esc: back"}))
	return content.String()
}

// renderLinkView renders the shareable link surface.
func (m Model) renderLinkView() string {
	snap := m.session.Snapshot()

	var content strings.Builder
	content.WriteString(titleStyle.Render("Your invite link"))
	content.WriteString("\n\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n")
	}

	switch {
	case snap.Link != nil:
		content.WriteString(linkBoxStyle.Render(snap.Link.ShortLink))
		content.WriteString("\n")
		content.WriteString(mutedStyle.Render("Share this link; it admits anyone who opens it."))
		content.WriteString("\n")
	case snap.LinkErr != nil:
		content.WriteString(emptyStateStyle.Render("The link could not be generated."))
		content.WriteString("\n")
	default:
		content.WriteString(fmt.Sprintf("\n%s Generating your invite link...\n", m.spinner.View()))
	}

	content.WriteString(m.renderFooter([]string{"r: new link", "esc: back"}))
	return content.String()
}

// renderHeader renders the title line and the session summary.
func (m Model) renderHeader(snap flow.Snapshot) string {
	title := titleStyle.Render(m.pageTitle(snap))

	summary := fmt.Sprintf("%d suggested  %d sent", len(m.visibleSuggestions()), len(m.outgoing))
	if snap.Refreshing {
		summary += fmt.Sprintf("  %s Refreshing", m.spinner.View())
	}

	return headerStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		mutedStyle.Render(summary),
	))
}

// pageTitle resolves the surface title from the configuration.
func (m Model) pageTitle(snap flow.Snapshot) string {
	if snap.Configuration != nil {
		if title, ok := snap.Configuration.GetString("title"); ok && title != "" {
			return title
		}
		if title, ok := snap.Configuration.LocalizedStrings["title"]; ok && title != "" {
			return title
		}
	}
	return "Invite friends"
}

// renderFooter renders the keyboard hint line.
func (m Model) renderFooter(hints []string) string {
	return footerStyle.Render(strings.Join(hints, "  •  "))
}

// renderErrorBanner renders the error banner.
func (m Model) renderErrorBanner() string {
	return errorBannerStyle.Render(m.errorMsg)
}

// rowStatus renders the tracker state marker for one row.
func (m Model) rowStatus(source, key string) string {
	tracker := m.orch.Tracker(source)
	if tracker.IsLoading(key) {
		return m.spinner.View()
	}
	if kind, ok := tracker.Succeeded(key); ok {
		return statusOKStyle.Render(successLabel(kind))
	}
	if message, ok := tracker.FailureMessage(key); ok {
		return statusFailStyle.Render("✗ " + message)
	}
	return ""
}

// successLabel names a settled row state.
func successLabel(kind invite.SuccessKind) string {
	switch kind {
	case invite.SuccessConnected:
		return "✓ connected"
	case invite.SuccessDismissed:
		return "dismissed"
	case invite.SuccessAccepted:
		return "✓ accepted"
	case invite.SuccessRevoked:
		return "revoked"
	case invite.SuccessDeleted:
		return "removed"
	default:
		return "✓ invited"
	}
}

// renderRows renders a selectable list of items with their status markers.
func renderRows(items []invite.ListItem, cursor int, active bool, status func(key string) string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		line := item.DisplayName
		if line == "" {
			line = item.Key()
		}
		if item.Subtitle != "" {
			line = fmt.Sprintf("%s  %s", line, mutedStyle.Render(item.Subtitle))
		}
		if marker := status(item.Key()); marker != "" {
			line = fmt.Sprintf("%s  %s", line, marker)
		}

		if active && i == cursor {
			lines = append(lines, selectedItemStyle.Render(line))
		} else {
			lines = append(lines, itemStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}
