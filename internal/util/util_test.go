// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"zero limit", "hello", 0, ""},
		{"tiny limit no ellipsis", "hello", 2, "he"},
		{"multibyte runes", "héllo wörld", 8, "héllo..."},
		{"cjk runes", "こんにちは世界", 5, "こん..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateRunes(tc.input, tc.maxRunes)
			if got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK characters are two columns wide, so five of them exceed width 7.
	if got := TruncateWidth("你好世界啊", 7); got != "你好..." {
		t.Errorf("TruncateWidth CJK = %q, want %q", got, "你好...")
	}
	if got := TruncateWidth("plain", 10); got != "plain" {
		t.Errorf("TruncateWidth short = %q, want unchanged", got)
	}
	if got := TruncateWidth("anything", 0); got != "" {
		t.Errorf("TruncateWidth zero = %q, want empty", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("a\nb\r\nc\n"); got != "a b c" {
		t.Errorf("CollapseWhitespace = %q, want %q", got, "a b c")
	}
	if got := CollapseWhitespace("\n\n"); got != "" {
		t.Errorf("CollapseWhitespace(newlines) = %q, want empty", got)
	}
}

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("content = %q, want %q", data, "first")
	}

	// Overwrite replaces content atomically.
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content after overwrite = %q, want %q", data, "second")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}
