// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/morganforge/sage-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the complete conversation structure. JSON
// exports carry everything needed to re-import, so no filtering
// options apply.
type JSONExporter struct{}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	return json.MarshalIndent(conv, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportJSON reads a conversation previously written by JSONExporter.
// Restored messages are settled, so their display status is delivered.
func ImportJSON(path string) (*model.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("malformed conversation export: %w", err)
	}
	for _, msg := range conv.Messages {
		if msg == nil {
			return nil, fmt.Errorf("malformed conversation export: null message")
		}
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("malformed conversation export: unknown role %q", msg.Role)
		}
		msg.Status = model.StatusDelivered
	}
	return &conv, nil
}
