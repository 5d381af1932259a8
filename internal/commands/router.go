// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// =============================================================================
// ROUTE
// =============================================================================

// Kind classifies a piece of raw input.
type Kind int

const (
	// KindText is free text, sent to the assistant as a chat turn.
	KindText Kind = iota

	// KindRemote is a slash command that maps to a remote operation.
	KindRemote

	// KindLocal is a slash command handled inside the client.
	KindLocal

	// KindInfo is a command that resolves to an informational message
	// with no network call: unknown commands and usage hints.
	KindInfo
)

// Op identifies the remote operation a routed command maps to.
type Op int

const (
	OpChat Op = iota
	OpSummarize
	OpKeypoints
	OpExplainFile
)

// Route is the classification of one raw input line.
type Route struct {
	Kind Kind

	// Op and Payload are set for KindRemote. For OpExplainFile the
	// payload is the referenced filename.
	Op      Op
	Payload string

	// Local is the canonical command name for KindLocal (e.g. "/export"),
	// Args its remaining arguments.
	Local string
	Args  []string

	// Info is the message to show for KindInfo.
	Info string
}

// =============================================================================
// ROUTER
// =============================================================================

// Router performs state-free classification of raw input.
type Router struct {
	registry *Registry
}

// NewRouter creates a router over the built-in command set.
func NewRouter() *Router {
	return &Router{registry: NewRegistry()}
}

// Registry exposes the command set for help rendering.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Route classifies raw input. Input not starting with "/" is free
// text. Command matching is case-insensitive on the first
// whitespace-delimited token. Unknown commands and recognized
// commands with an empty payload resolve to an informational message
// and never a network call.
func (r *Router) Route(raw string) Route {
	input := strings.TrimSpace(raw)
	if !strings.HasPrefix(input, "/") {
		return Route{Kind: KindText, Op: OpChat, Payload: input}
	}

	name, rest := splitCommand(input)
	cmd := r.registry.Get(name)
	if cmd == nil {
		return Route{
			Kind: KindInfo,
			Info: fmt.Sprintf("Unknown command %s. Type /help to see what I can do.", name),
		}
	}

	if !cmd.Remote {
		return Route{
			Kind:  KindLocal,
			Local: cmd.Name,
			Args:  strings.Fields(rest),
		}
	}

	if rest == "" {
		return Route{
			Kind: KindInfo,
			Info: fmt.Sprintf("Usage: %s", cmd.Usage),
		}
	}

	switch cmd.Name {
	case "/summarize":
		// A single token carrying both "_" and "." is a stored upload
		// name, not a sentence to summarize.
		if looksLikeStoredFile(rest) {
			return Route{Kind: KindRemote, Op: OpExplainFile, Payload: rest}
		}
		return Route{Kind: KindRemote, Op: OpSummarize, Payload: rest}

	case "/keypoints":
		return Route{Kind: KindRemote, Op: OpKeypoints, Payload: rest}

	case "/explain":
		return Route{Kind: KindRemote, Op: OpExplainFile, Payload: rest}

	case "/translate":
		return r.routeTranslate(cmd, rest)

	case "/analyze":
		return Route{
			Kind:    KindRemote,
			Op:      OpChat,
			Payload: "Analyze the following text. Describe its main ideas, structure, and tone:\n\n" + rest,
		}
	}

	// Unreachable while registerBuiltins and this switch agree.
	return Route{Kind: KindInfo, Info: fmt.Sprintf("Usage: %s", cmd.Usage)}
}

// routeTranslate validates the target language token and rewrites the
// command as an instruction-prefixed chat turn.
func (r *Router) routeTranslate(cmd *Command, rest string) Route {
	langToken, text := splitCommand(rest)
	if text == "" {
		return Route{Kind: KindInfo, Info: fmt.Sprintf("Usage: %s", cmd.Usage)}
	}

	target := languageName(langToken)
	if target == "" {
		return Route{
			Kind: KindInfo,
			Info: fmt.Sprintf("I don't recognize the language %q. Usage: %s", langToken, cmd.Usage),
		}
	}

	return Route{
		Kind:    KindRemote,
		Op:      OpChat,
		Payload: fmt.Sprintf("Translate the following text to %s:\n\n%s", target, text),
	}
}

// splitCommand separates the first whitespace-delimited token from the
// remainder, trimming both.
func splitCommand(input string) (string, string) {
	fields := strings.SplitN(input, " ", 2)
	name := strings.TrimSpace(fields[0])
	rest := ""
	if len(fields) > 1 {
		rest = strings.TrimSpace(fields[1])
	}
	return name, rest
}

// looksLikeStoredFile reports whether payload is a single token that
// names an uploaded file. Stored uploads are renamed to
// "<id>_<original>.<ext>", so one token with both an underscore and a
// dot distinguishes a filename from a pasted sentence.
func looksLikeStoredFile(payload string) bool {
	if strings.ContainsAny(payload, " \t\n") {
		return false
	}
	return strings.Contains(payload, "_") && strings.Contains(payload, ".")
}

// languageName resolves a user-typed language token ("fr", "french",
// "pt-BR") to an English display name, or "" if unrecognized.
func languageName(token string) string {
	// Try a BCP 47 tag first, then a plain English name.
	if tag, err := language.Parse(token); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	lower := strings.ToLower(token)
	for _, tag := range display.Supported.Tags() {
		if strings.ToLower(display.English.Tags().Name(tag)) == lower {
			return display.English.Tags().Name(tag)
		}
	}
	return ""
}
