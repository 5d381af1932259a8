// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"time"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// HistoryMessage is one turn in a prior conversation, as the service
// stores it.
type HistoryMessage struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ChatResult is the outcome of a chat call.
type ChatResult struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// Explanation is the outcome of an explain-file call. Partials are the
// per-section notes the service produced on the way to the final text;
// the extraction pipeline behind them is opaque to this client.
type Explanation struct {
	Partials []string `json:"partials"`
	Final    string   `json:"final"`
}

// chatRequest carries the chat payload. SessionID lets the server load
// its authoritative history; History is the client-side window for
// deployments without server-side sessions. The server ignores fields
// it does not know.
type chatRequest struct {
	Message   string           `json:"message"`
	SessionID string           `json:"session_id,omitempty"`
	History   []HistoryMessage `json:"history,omitempty"`
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends a free-text message and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, message, sessionID string, history []HistoryMessage) (*ChatResult, error) {
	var result ChatResult
	err := c.postJSON(ctx, "/chat", chatRequest{
		Message:   message,
		SessionID: sessionID,
		History:   history,
	}, &result)
	if err != nil {
		return nil, err
	}
	if isRemoteError(result.Response) {
		return nil, remoteError(result.Response)
	}
	return &result, nil
}

// =============================================================================
// TEXT OPERATIONS
// =============================================================================

// Summarize condenses text into the requested number of bullets.
func (c *Client) Summarize(ctx context.Context, text string, bullets int) (string, error) {
	var result struct {
		Summary string `json:"summary"`
	}
	err := c.postJSON(ctx, "/api/summarize", map[string]any{
		"text":    text,
		"bullets": bullets,
	}, &result)
	if err != nil {
		return "", err
	}
	if isRemoteError(result.Summary) {
		return "", remoteError(result.Summary)
	}
	return result.Summary, nil
}

// Keywords extracts up to topK key phrases from text.
func (c *Client) Keywords(ctx context.Context, text string, topK int) ([]string, error) {
	var result struct {
		Keywords []string `json:"keywords"`
	}
	err := c.postJSON(ctx, "/api/keywords", map[string]any{
		"text":  text,
		"top_k": topK,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Keywords, nil
}

// =============================================================================
// FILE EXPLANATION
// =============================================================================

// ExplainFile asks the service to explain a previously uploaded file.
// The filename must be a fileId from a successful upload acknowledgment.
func (c *Client) ExplainFile(ctx context.Context, filename string, bullets int) (*Explanation, error) {
	var result struct {
		OK       bool     `json:"ok"`
		Partials []string `json:"partials"`
		Final    string   `json:"final"`
		Error    string   `json:"error"`
	}
	err := c.postJSON(ctx, "/explain_file", map[string]any{
		"filename": filename,
		"bullets":  bullets,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, &ClientError{Type: ErrTypeRemote, Message: result.Error}
	}
	return &Explanation{Partials: result.Partials, Final: result.Final}, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// History fetches the authoritative conversation history for the
// logged-in user, oldest first.
func (c *Client) History(ctx context.Context) ([]HistoryMessage, error) {
	var result []HistoryMessage
	if err := c.getJSON(ctx, "/api/history", &result); err != nil {
		return nil, err
	}
	return result, nil
}
