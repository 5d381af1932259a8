// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the conversation to files in portable formats
// and reads JSON exports back in.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/morganforge/sage-tui/internal/model"
	"github.com/morganforge/sage-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to one output format.
type Exporter interface {
	// Export renders the conversation and returns the content.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string
}

// ForFormat returns the exporter for a format name, or nil if the
// format is unknown. Recognized: "json", "markdown" (alias "md"),
// "txt" (alias "text").
func ForFormat(format string) Exporter {
	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{}
	case "markdown", "md":
		return &MarkdownExporter{IncludeTimestamps: true}
	case "txt", "text":
		return &TextExporter{}
	default:
		return nil
	}
}

// =============================================================================
// EXPORT TO FILE
// =============================================================================

// ExportToFile renders the conversation and writes it to path. An
// empty path derives a timestamped filename in the current directory.
// Returns the path written.
func ExportToFile(conv *model.Conversation, exporter Exporter, path string) (string, error) {
	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if path == "" {
		timestamp := time.Now().Format("20060102_150405")
		path = fmt.Sprintf("conversation_%s%s", timestamp, exporter.FileExtension())
	} else if filepath.Ext(path) == "" {
		path += exporter.FileExtension()
	}

	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
