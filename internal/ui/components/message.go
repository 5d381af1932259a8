// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/morganforge/sage-tui/internal/model"
	"github.com/morganforge/sage-tui/internal/ui/styles"
	"github.com/morganforge/sage-tui/internal/util"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer turns log messages into styled terminal output.
type MessageRenderer struct {
	theme    *styles.Theme
	markdown *glamour.TermRenderer
	width    int
}

// NewMessageRenderer creates a renderer. Markdown rendering is skipped
// when useMarkdown is false or the renderer cannot be built.
func NewMessageRenderer(theme *styles.Theme, useMarkdown bool, width int) *MessageRenderer {
	r := &MessageRenderer{theme: theme, width: width}
	if useMarkdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

// SetWidth rebuilds word wrap for a resized terminal.
func (r *MessageRenderer) SetWidth(width int) {
	if width == r.width {
		return
	}
	r.width = width
	if r.markdown != nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			r.markdown = md
		}
	}
}

// Render renders one message, including its speaker label.
func (r *MessageRenderer) Render(msg model.Message) string {
	t := r.theme

	switch msg.Role {
	case model.RoleUser:
		return t.UserLabel.Render(msg.Role.DisplayName()) + "\n" +
			t.UserText.Render(msg.Text)

	case model.RoleAssistant:
		if msg.IsPlaceholder() && msg.Text == "" {
			return t.AssistantLabel.Render(msg.Role.DisplayName()) + "\n" +
				t.Typing.Render("...")
		}
		return t.AssistantLabel.Render(msg.Role.DisplayName()) + "\n" +
			r.renderAssistantText(msg.Text)

	case model.RoleFile:
		name := msg.Text
		kind := ""
		if msg.Attachment != nil {
			name = msg.Attachment.OriginalName
			kind = msg.Attachment.FileType
		}
		chip := util.TruncateWidth(fmt.Sprintf("%s (%s)", name, kind), r.width-4)
		return t.FileChip.Render(chip)

	case model.RoleNotice:
		if msg.Status == model.StatusError {
			return t.ErrorText.Render(msg.Text)
		}
		return t.NoticeText.Render(msg.Text)
	}
	return msg.Text
}

// renderAssistantText prefers glamour markdown; plain text replies and
// render failures fall back to fenced-code highlighting only.
func (r *MessageRenderer) renderAssistantText(text string) string {
	if r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	if strings.Contains(text, "```") {
		return ParseCodeBlocks(text, r.width)
	}
	return r.theme.AssistantText.Render(text)
}
