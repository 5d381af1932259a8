// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/sage-tui/internal/config"
	"github.com/morganforge/sage-tui/internal/engine"
	"github.com/morganforge/sage-tui/internal/ui/components"
	"github.com/morganforge/sage-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// engineEventMsg carries one engine event into the Update loop.
type engineEventMsg engine.Event

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. All conversation
// state lives in the engine; the model holds only widgets and layout.
type Model struct {
	eng   *engine.Engine
	cfg   *config.Config
	theme *styles.Theme
	keys  KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner
	renderer *components.MessageRenderer
	status   *components.StatusBar

	width  int
	height int
	ready  bool
}

// New creates the chat view over a started engine. online reflects the
// startup reachability probe; it only affects the status bar.
func New(eng *engine.Engine, cfg *config.Config, online bool) *Model {
	theme := styles.NewTheme()

	ti := textinput.New()
	ti.Placeholder = "Ask anything, or /help"
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.CharLimit = 4000
	ti.Focus()

	status := components.NewStatusBar(theme)
	status.Mode = cfg.Persistence.Mode
	status.Online = online
	status.CanSpeak = eng.Media().Capabilities().CanSpeak()
	status.CanRecord = eng.Media().Capabilities().CanTranscribe()

	return &Model{
		eng:      eng,
		cfg:      cfg,
		theme:    theme,
		keys:     DefaultKeyMap(),
		input:    ti,
		spinner:  components.NewSpinner(),
		renderer: components.NewMessageRenderer(theme, cfg.UI.Markdown, 80),
		status:   status,
	}
}

// Init starts the input cursor and the engine event subscription.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// waitForEvent blocks on the engine's event stream and delivers the
// next change into the Update loop.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return engineEventMsg(<-m.eng.Events())
	}
}
