// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/sage-tui/internal/engine"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.eng.Shutdown(context.Background())
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			if text := strings.TrimSpace(m.input.Value()); text != "" {
				m.input.Reset()
				m.eng.Send(text)
			}

		case key.Matches(msg, m.keys.Stop):
			m.eng.Stop()

		case key.Matches(msg, m.keys.Regenerate):
			m.eng.Regenerate()

		case key.Matches(msg, m.keys.Record):
			if m.eng.Media().Recording() {
				m.eng.Stop()
			} else {
				m.eng.Send("/record")
			}

		case key.Matches(msg, m.keys.Speak):
			m.eng.Send("/speak")

		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown),
			key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case engineEventMsg:
		cmds = append(cmds, m.handleEngineEvent(engine.Event(msg))...)

	default:
		if cmd := m.spinner.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
			// Spinner frames live inside the viewport content.
			m.refreshViewport()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleEngineEvent refreshes widgets from engine state and re-arms
// the event subscription.
func (m *Model) handleEngineEvent(ev engine.Event) []tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvent()}

	switch ev.Kind {
	case engine.EventQuit:
		m.eng.Shutdown(context.Background())
		return []tea.Cmd{tea.Quit}

	case engine.EventBusyChanged:
		m.status.Busy = m.eng.Busy()
		if m.eng.Busy() && !m.spinner.Active() {
			cmds = append(cmds, m.spinner.Start())
		} else if !m.eng.Busy() {
			m.spinner.Stop()
		}

	case engine.EventLogChanged, engine.EventRevealStep:
		m.refreshViewport()
	}

	m.status.Recording = m.eng.Media().Recording()
	return cmds
}

// refreshViewport re-renders the log and keeps the view pinned to the
// latest message.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

// resize lays the widgets out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.renderer.SetWidth(width - 2)
	m.input.Width = width - 6

	// Header, input box, and status bar frame the viewport.
	viewportHeight := height - 5
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
	m.refreshViewport()
}
