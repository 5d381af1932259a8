// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system: classification
// of raw input into free text, a remote study operation, or a local
// client action.
package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command describes one slash command.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/summarize <text>")
	Usage string

	// Remote commands reach the service; local ones are handled in
	// the client.
	Remote bool

	// Category for grouping in help display
	Category string
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias. Lookup is
// case-insensitive.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands, sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// HelpText renders the command list for the /help response.
func (r *Registry) HelpText() string {
	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range r.All() {
		sb.WriteString("  ")
		sb.WriteString(cmd.Usage)
		sb.WriteString(" - ")
		sb.WriteString(cmd.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("\nAnything else is sent to the assistant as-is.")
	return sb.String()
}

// registerBuiltins registers the complete command set.
func (r *Registry) registerBuiltins() {
	// Remote study operations.
	r.Register(&Command{
		Name:        "/summarize",
		Aliases:     []string{"/sum"},
		Description: "Summarize pasted text, or an uploaded file by name",
		Usage:       "/summarize <text or filename>",
		Remote:      true,
		Category:    "study",
	})
	r.Register(&Command{
		Name:        "/keypoints",
		Aliases:     []string{"/kp", "/keywords"},
		Description: "Extract the key points from pasted text",
		Usage:       "/keypoints <text>",
		Remote:      true,
		Category:    "study",
	})
	r.Register(&Command{
		Name:        "/explain",
		Description: "Explain an uploaded file section by section",
		Usage:       "/explain <filename>",
		Remote:      true,
		Category:    "study",
	})
	r.Register(&Command{
		Name:        "/translate",
		Aliases:     []string{"/tr"},
		Description: "Translate text to another language",
		Usage:       "/translate <language> <text>",
		Remote:      true,
		Category:    "study",
	})
	r.Register(&Command{
		Name:        "/analyze",
		Description: "Analyze the structure and tone of pasted text",
		Usage:       "/analyze <text>",
		Remote:      true,
		Category:    "study",
	})

	// Local client actions.
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show this help",
		Usage:       "/help",
		Category:    "client",
	})
	r.Register(&Command{
		Name:        "/new",
		Description: "Start a new session, discarding the current log",
		Usage:       "/new",
		Category:    "client",
	})
	r.Register(&Command{
		Name:        "/save",
		Description: "Mirror the conversation to the configured store now",
		Usage:       "/save",
		Category:    "client",
	})
	r.Register(&Command{
		Name:        "/export",
		Description: "Export the conversation to a file",
		Usage:       "/export <json|markdown|txt> [path]",
		Category:    "client",
	})
	r.Register(&Command{
		Name:        "/speak",
		Description: "Speak the last assistant reply aloud",
		Usage:       "/speak",
		Category:    "client",
	})
	r.Register(&Command{
		Name:        "/record",
		Aliases:     []string{"/rec"},
		Description: "Record from the microphone and transcribe",
		Usage:       "/record",
		Category:    "client",
	})
	r.Register(&Command{
		Name:        "/stop",
		Description: "Stop the in-flight request, reveal, or recording",
		Usage:       "/stop",
		Category:    "client",
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit",
		Usage:       "/quit",
		Category:    "client",
	})
}
