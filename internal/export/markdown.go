// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/morganforge/sage-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders the conversation as a readable document.
type MarkdownExporter struct {
	// IncludeTimestamps adds a per-message timestamp line.
	IncludeTimestamps bool
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", conv.Title()))
	sb.WriteString(fmt.Sprintf("_Exported %s, %d messages_\n\n---\n\n",
		time.Now().Format("2006-01-02 15:04"), len(conv.Messages)))

	for _, msg := range conv.Messages {
		if msg.IsPlaceholder() {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s", msg.Role.DisplayName()))
		if e.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf(" <sub>%s</sub>", msg.Timestamp.Format("15:04:05")))
		}
		sb.WriteString("\n\n")

		if msg.Attachment != nil {
			sb.WriteString(fmt.Sprintf("Uploaded `%s` (%s)\n\n",
				msg.Attachment.OriginalName, msg.Attachment.FileType))
		}
		if msg.Text != "" {
			sb.WriteString(msg.Text)
			sb.WriteString("\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
