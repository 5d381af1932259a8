// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for sage-tui.
//
// It contains:
//   - Atomic file writes (write-temp, fsync, rename) used by config,
//     export, and the credential store
//   - Rune- and width-aware string truncation for UTF-8 safe display
//
// Nothing in this package may import other sage-tui packages.
package util
