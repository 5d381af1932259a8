// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full screen: header, conversation, input, status.
func (m *Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.status.View(m.width))
	return sb.String()
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("sage")
	hint := m.theme.HeaderHint.Render("study assistant")
	return m.theme.Header.Width(m.width).Render(title + " " + hint)
}

// renderLog renders every message plus the spinner line while a
// request is pending.
func (m *Model) renderLog() string {
	var blocks []string
	for _, msg := range m.eng.Snapshot() {
		rendered := m.renderer.Render(msg)
		if !msg.Timestamp.IsZero() && !m.theme.Compact() {
			ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
			rendered = lipgloss.JoinHorizontal(lipgloss.Top, rendered, " "+ts)
		}
		blocks = append(blocks, rendered)
	}
	if m.spinner.Active() {
		blocks = append(blocks, m.spinner.View())
	}
	return strings.Join(blocks, "\n\n")
}
