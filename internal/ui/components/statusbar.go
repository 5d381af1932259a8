// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/sage-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar shows the persistence mode, connection state, and key
// hints at the bottom of the screen.
type StatusBar struct {
	theme *styles.Theme

	Mode      string // "local" or "server"
	Busy      bool
	Recording bool
	Online    bool
	CanSpeak  bool
	CanRecord bool
}

// NewStatusBar creates a status bar for the theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme, Online: true}
}

// View renders the bar at the given width.
func (sb *StatusBar) View(width int) string {
	t := sb.theme

	left := t.StatusMode.Render(strings.ToUpper(sb.Mode))
	if !sb.Online {
		left += " " + t.ErrorText.Render("offline")
	}
	if sb.Recording {
		left += " " + t.StatusRecord.Render("REC")
	} else if sb.Busy {
		left += " " + t.StatusBusy.Render("working")
	}

	hints := []string{
		t.ShortcutKey.Render("enter") + t.ShortcutDesc.Render(" send"),
		t.ShortcutKey.Render("esc") + t.ShortcutDesc.Render(" stop"),
		t.ShortcutKey.Render("ctrl+r") + t.ShortcutDesc.Render(" regen"),
	}
	if sb.CanRecord {
		hints = append(hints, t.ShortcutKey.Render("ctrl+t")+t.ShortcutDesc.Render(" talk"))
	}
	hints = append(hints, t.ShortcutKey.Render("ctrl+c")+t.ShortcutDesc.Render(" quit"))
	right := strings.Join(hints, "  ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return t.StatusBar.Width(width).Render(left)
	}
	return t.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
