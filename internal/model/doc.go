// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
//
// The Conversation is the ground truth of a session: an ordered,
// append-only (with targeted removal) record of messages. Everything
// else in the engine reads and writes through it.
//
// The log itself is not synchronized. It is owned by the engine, which
// serializes all mutation; see internal/engine.
package model
