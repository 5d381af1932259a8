// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError reports a structurally malformed message. These are
// programmer errors; well-formed UI paths never produce them.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid message: " + e.Field + ": " + e.Message
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered conversation log. Ordering is insertion
// order; no reordering operation exists.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []*Message `json:"messages"`
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// LOG OPERATIONS
// =============================================================================

// Append validates msg, assigns ID and timestamp if absent, inserts it at
// the end and returns the stored message.
func (c *Conversation) Append(msg *Message) (*Message, error) {
	if msg == nil {
		return nil, &ValidationError{Field: "message", Message: "nil"}
	}
	if !msg.Role.Valid() {
		return nil, &ValidationError{Field: "role", Message: "unknown role " + string(msg.Role)}
	}
	if msg.Role == RoleFile {
		if msg.Attachment == nil {
			return nil, &ValidationError{Field: "attachment", Message: "file message requires attachment"}
		}
		if msg.Attachment.FileID == "" {
			return nil, &ValidationError{Field: "attachment.file_id", Message: "missing file id"}
		}
	} else if msg.Text == "" && !msg.IsPlaceholder() {
		return nil, &ValidationError{Field: "text", Message: "missing text"}
	}

	if msg.ID == "" {
		msg.ID = generateID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	return msg, nil
}

// RemoveByID removes a message by ID. Removing a non-existent ID is a
// no-op returning false.
func (c *Conversation) RemoveByID(id string) bool {
	for i, msg := range c.Messages {
		if msg.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// ReplaceText replaces the text of an assistant message. It fails
// silently (false) if the ID is absent or the role is not assistant.
func (c *Conversation) ReplaceText(id, newText string) bool {
	for _, msg := range c.Messages {
		if msg.ID == id {
			if msg.Role != RoleAssistant {
				return false
			}
			msg.Text = newText
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Snapshot returns the messages in order. The slice is a copy; the
// messages themselves are shared.
func (c *Conversation) Snapshot() []*Message {
	out := make([]*Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// =============================================================================
// LOOKUPS
// =============================================================================

// GetByID returns a message by its ID, or nil.
func (c *Conversation) GetByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// LastUserMessage returns the most recent user message, or nil.
func (c *Conversation) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (c *Conversation) LastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant && !c.Messages[i].IsPlaceholder() {
			return c.Messages[i]
		}
	}
	return nil
}

// Placeholder returns the typing placeholder if present, or nil.
func (c *Conversation) Placeholder() *Message {
	for _, msg := range c.Messages {
		if msg.IsPlaceholder() {
			return msg
		}
	}
	return nil
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.Messages = make([]*Message, 0)
	c.UpdatedAt = time.Now()
}

// Title derives a short title from the first user message.
func (c *Conversation) Title() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			return msg.Preview(50)
		}
	}
	return "New conversation"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateConversationID creates a unique conversation ID.
func generateConversationID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "conv_" + hex.EncodeToString(bytes)
}
