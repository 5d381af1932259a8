// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/morganforge/sage-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFile      Role = "file"
	RoleNotice    Role = "system-notice"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleFile:
		return "File"
	case RoleNotice:
		return "Notice"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleFile, RoleNotice:
		return true
	}
	return false
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is a transient, cosmetic annotation on a message. It is never
// authoritative state and is not mirrored to persistence.
type Status string

const (
	StatusSent      Status = "sent"
	StatusTyping    Status = "typing"
	StatusDelivered Status = "delivered"
	StatusError     Status = "error"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Attachment describes the upload backing a file message. FileID always
// comes from a successful upload acknowledgment; the engine never
// fabricates one.
type Attachment struct {
	FileID       string `json:"file_id"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
}

// Message is the atomic unit of the conversation log.
//
// ID, Role, Timestamp and Attachment are immutable after creation. Text
// is mutable only for assistant messages, through Conversation.ReplaceText.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// Transient display state, not persisted as authoritative.
	Status Status `json:"-"`

	// Set for RoleFile messages only.
	Attachment *Attachment `json:"attachment,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, text string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
		Status:    StatusSent,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) *Message {
	return NewMessage(RoleUser, text)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(text string) *Message {
	msg := NewMessage(RoleAssistant, text)
	msg.Status = StatusDelivered
	return msg
}

// NewNoticeMessage creates a new system-notice message.
func NewNoticeMessage(text string) *Message {
	return NewMessage(RoleNotice, text)
}

// NewErrorNotice creates a system-notice message carrying error status.
// Errors read as explicit error-prefixed text; aborts and info do not.
func NewErrorNotice(text string) *Message {
	msg := NewMessage(RoleNotice, text)
	msg.Status = StatusError
	return msg
}

// NewPlaceholder creates the transient typing placeholder shown while a
// response is pending. At most one may exist in a log at a time; the
// engine enforces that.
func NewPlaceholder() *Message {
	msg := NewMessage(RoleAssistant, "")
	msg.Status = StatusTyping
	return msg
}

// NewFileMessage creates a file message from an upload acknowledgment.
func NewFileMessage(att Attachment) *Message {
	msg := NewMessage(RoleFile, att.OriginalName)
	msg.Attachment = &att
	return msg
}

// IsPlaceholder reports whether the message is the typing placeholder.
func (m *Message) IsPlaceholder() bool {
	return m.Status == StatusTyping
}

// Preview returns a one-line truncated preview of the message text.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Text), maxLen)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
