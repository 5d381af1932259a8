// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects
// the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderHint  lipgloss.Style

	// Message rendering
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserText       lipgloss.Style
	AssistantText  lipgloss.Style
	NoticeText     lipgloss.Style
	ErrorText      lipgloss.Style
	FileChip       lipgloss.Style
	Timestamp      lipgloss.Style
	Typing         lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusMode   lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusRecord lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Code blocks
	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.HeaderHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.UserText = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.AssistantText = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.NoticeText = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)
	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)
	t.FileChip = lipgloss.NewStyle().
		Foreground(Emerald).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Typing = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusMode = lipgloss.NewStyle().
		Background(TealDeep).
		Foreground(TextInverse).
		Padding(0, 1)
	t.StatusBusy = lipgloss.NewStyle().
		Foreground(Amber)
	t.StatusRecord = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		Blink(true)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(IndigoDeep).
		Padding(0, 1)
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// Compact reports whether the terminal is too narrow for side labels.
func (t *Theme) Compact() bool {
	return t.Width > 0 && t.Width < 60
}
