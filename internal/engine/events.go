// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies what changed.
type EventKind int

const (
	// EventLogChanged means messages were appended, removed, or
	// replaced; consumers should re-render from a fresh snapshot.
	EventLogChanged EventKind = iota

	// EventRevealStep means an in-progress reveal extended one
	// message's text. Separate from EventLogChanged so consumers can
	// skip expensive work (like re-mirroring) on animation frames.
	EventRevealStep

	// EventBusyChanged means the engine started or finished an
	// operation; Busy() has the current value.
	EventBusyChanged

	// EventQuit means the user asked to exit.
	EventQuit
)

// Event is a change notification. Events carry no payload beyond the
// kind and the affected message; consumers read state through
// Snapshot and Busy.
type Event struct {
	Kind      EventKind
	MessageID string
}
