// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the remote assistant service.
//
// The service exposes chat, summarization, keyword extraction, file
// upload/explanation, and per-user conversation history. All methods take
// a context and honor cancellation; the engine relies on that for its
// latest-wins policy.
//
// Errors are typed (ClientError) so callers can distinguish transport
// failures from in-band service errors. The service reports some errors
// in-band as payload strings prefixed with "(error)"; those are surfaced
// as ErrTypeRemote.
package api
