// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/morganforge/sage-tui/internal/model"
)

// =============================================================================
// PLAIN TEXT EXPORTER
// =============================================================================

// TextExporter renders the conversation as plain text, one speaker
// label per turn.
type TextExporter struct{}

// Export converts a conversation to plain text.
func (e *TextExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder
	for _, msg := range conv.Messages {
		if msg.IsPlaceholder() {
			continue
		}
		sb.WriteString(msg.Role.DisplayName())
		sb.WriteString(": ")
		if msg.Attachment != nil {
			sb.WriteString(fmt.Sprintf("[uploaded %s] ", msg.Attachment.OriginalName))
		}
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}
