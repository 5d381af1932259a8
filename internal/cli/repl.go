// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the plain-terminal REPL, for sessions where a
// full-screen TUI is unwanted (dumb terminals, scripting, screen
// readers). It drives the same engine as the TUI.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/morganforge/sage-tui/internal/config"
	"github.com/morganforge/sage-tui/internal/engine"
	"github.com/morganforge/sage-tui/internal/model"
	"github.com/morganforge/sage-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle    = lipgloss.NewStyle().Foreground(styles.Indigo).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(styles.Teal).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(styles.Amber).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(styles.Rose)
	fileStyle      = lipgloss.NewStyle().Foreground(styles.Emerald)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// input wraps liner with persistent history.
type input struct {
	line        *liner.State
	historyFile string
}

func newInput() *input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &input{line: line}
	if dir, err := config.BaseDir(); err == nil {
		in.historyFile = filepath.Join(dir, "repl_history")
		if f, err := os.Open(in.historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return in
}

func (in *input) read(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

func (in *input) close() {
	if in.historyFile == "" {
		in.line.Close()
		return
	}
	if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		in.line.WriteHistory(f)
		f.Close()
	}
	in.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// Run drives the engine from a line-oriented prompt until the user
// quits. It consumes engine events on a goroutine and prints settled
// messages as they land.
func Run(eng *engine.Engine, cfg *config.Config) error {
	in := newInput()
	defer in.close()

	done := make(chan struct{})
	go printEvents(eng, done)

	eng.Start(context.Background())

	for {
		text, err := in.read(promptStyle.Render("sage> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF ends the session.
			fmt.Println()
			break
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			break
		}

		eng.Send(text)
		waitSettled(eng, done)

		select {
		case <-done:
			// The engine reported a quit command.
			eng.Shutdown(context.Background())
			return nil
		default:
		}
	}

	eng.Shutdown(context.Background())
	return nil
}

// printEvents renders every new settled message. Reveal steps are
// skipped; the plain REPL prints whole messages.
func printEvents(eng *engine.Engine, done chan struct{}) {
	seen := make(map[string]bool)
	for ev := range eng.Events() {
		switch ev.Kind {
		case engine.EventQuit:
			close(done)
			return
		case engine.EventLogChanged:
			for _, msg := range eng.Snapshot() {
				if seen[msg.ID] || msg.Status == model.StatusTyping {
					continue
				}
				seen[msg.ID] = true
				printMessage(msg)
			}
		}
	}
}

func printMessage(msg model.Message) {
	switch msg.Role {
	case model.RoleUser:
		// The user already sees their own line at the prompt.
	case model.RoleAssistant:
		fmt.Printf("%s %s\n", assistantStyle.Render("assistant:"), msg.Text)
	case model.RoleFile:
		name := msg.Text
		if msg.Attachment != nil {
			name = msg.Attachment.OriginalName
		}
		fmt.Println(fileStyle.Render("uploaded " + name))
	case model.RoleNotice:
		if msg.Status == model.StatusError {
			fmt.Println(errorStyle.Render(msg.Text))
		} else {
			fmt.Println(noticeStyle.Render(msg.Text))
		}
	}
}

// waitSettled blocks until the engine has no operation or reveal in
// flight, so output lands before the next prompt. A closed done
// channel (quit command) releases it immediately.
func waitSettled(eng *engine.Engine, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-time.After(25 * time.Millisecond):
		}
		if !eng.Busy() && !hasTyping(eng) {
			return
		}
	}
}

func hasTyping(eng *engine.Engine) bool {
	for _, msg := range eng.Snapshot() {
		if msg.Status == model.StatusTyping {
			return true
		}
	}
	return false
}
