// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the sage TUI.
package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/sage-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is the waiting indicator shown while a request is in flight.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	isActive  bool
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = lipgloss.NewStyle().Foreground(styles.Teal)

	return Spinner{
		spinner: s,
		message: "Thinking",
	}
}

// Start activates the spinner and resets its timer.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	return s.isActive
}

// SetMessage changes the label next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.message = message
}

// Update advances the animation.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.isActive {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner line, with elapsed time once the wait gets
// noticeable.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	label := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true).Render(s.message + "...")
	line := s.spinner.View() + " " + label

	if elapsed := time.Since(s.startTime); elapsed > 3*time.Second {
		timer := lipgloss.NewStyle().Foreground(styles.TextMuted).
			Render(fmt.Sprintf(" (%ds)", int(elapsed.Seconds())))
		line += timer
	}
	return line
}
