// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
	// A zero-size theme is not compact until a real size arrives.
	if theme.Compact() {
		t.Error("unsized theme should not report compact")
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("size = %dx%d, want 120x40", theme.Width, theme.Height)
	}
	if theme.Compact() {
		t.Error("120 columns should not be compact")
	}
	theme.SetSize(50, 20)
	if !theme.Compact() {
		t.Error("50 columns should be compact")
	}
}
