// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	if msg.ID == "" {
		t.Error("expected generated ID")
	}
	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if msg.Status != StatusSent {
		t.Errorf("Status = %q, want %q", msg.Status, StatusSent)
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewUserMessage("x")
		if seen[msg.ID] {
			t.Fatalf("duplicate ID %q", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleFile, RoleNotice} {
		if !r.Valid() {
			t.Errorf("Role %q should be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestPlaceholder(t *testing.T) {
	ph := NewPlaceholder()
	if !ph.IsPlaceholder() {
		t.Error("placeholder should report IsPlaceholder")
	}
	if ph.Role != RoleAssistant {
		t.Errorf("placeholder role = %q, want assistant", ph.Role)
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewUserMessage("this is a fairly long message body")
	if got := msg.Preview(10); got != "this is..." {
		t.Errorf("Preview = %q", got)
	}
	if got := msg.Preview(100); got != msg.Text {
		t.Errorf("Preview should return full text, got %q", got)
	}
}

// =============================================================================
// CONVERSATION LOG TESTS
// =============================================================================

func TestAppendAssignsIdentity(t *testing.T) {
	conv := NewConversation()

	stored, err := conv.Append(&Message{Role: RoleUser, Text: "hi"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if stored.ID == "" {
		t.Error("Append should assign an ID")
	}
	if stored.Timestamp.IsZero() {
		t.Error("Append should assign a timestamp")
	}
	if conv.Len() != 1 {
		t.Errorf("Len = %d, want 1", conv.Len())
	}
}

func TestAppendValidation(t *testing.T) {
	conv := NewConversation()

	tests := []struct {
		name string
		msg  *Message
	}{
		{"nil message", nil},
		{"unknown role", &Message{Role: Role("tool"), Text: "x"}},
		{"missing text", &Message{Role: RoleUser}},
		{"file without attachment", &Message{Role: RoleFile, Text: "doc.pdf"}},
		{"file without file id", &Message{Role: RoleFile, Text: "doc.pdf", Attachment: &Attachment{OriginalName: "doc.pdf"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := conv.Append(tc.msg)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	if conv.Len() != 0 {
		t.Errorf("invalid appends must not mutate the log, Len = %d", conv.Len())
	}
}

func TestRemoveByIDIdempotent(t *testing.T) {
	conv := NewConversation()
	msg, _ := conv.Append(NewUserMessage("hi"))

	if !conv.RemoveByID(msg.ID) {
		t.Error("first removal should return true")
	}
	if conv.RemoveByID(msg.ID) {
		t.Error("second removal should return false")
	}
	if conv.RemoveByID("msg_nonexistent") {
		t.Error("removing unknown ID should return false")
	}
	if conv.Len() != 0 {
		t.Errorf("Len = %d, want 0", conv.Len())
	}
}

func TestReplaceTextAssistantOnly(t *testing.T) {
	conv := NewConversation()
	user, _ := conv.Append(NewUserMessage("question"))
	asst, _ := conv.Append(NewAssistantMessage("answer"))

	if !conv.ReplaceText(asst.ID, "revised answer") {
		t.Error("ReplaceText on assistant message should succeed")
	}
	if asst.Text != "revised answer" {
		t.Errorf("Text = %q, want revised", asst.Text)
	}

	if conv.ReplaceText(user.ID, "nope") {
		t.Error("ReplaceText on user message should fail silently")
	}
	if user.Text != "question" {
		t.Error("user text must be unchanged")
	}
	if conv.ReplaceText("msg_nonexistent", "nope") {
		t.Error("ReplaceText on unknown ID should return false")
	}
}

func TestSnapshotOrdering(t *testing.T) {
	conv := NewConversation()
	texts := []string{"one", "two", "three"}
	for _, s := range texts {
		conv.Append(NewUserMessage(s))
	}

	snap := conv.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	for i, s := range texts {
		if snap[i].Text != s {
			t.Errorf("snapshot[%d] = %q, want %q (insertion order)", i, snap[i].Text, s)
		}
	}

	// Mutating the returned slice must not affect the log.
	snap[0] = nil
	if conv.Messages[0] == nil {
		t.Error("snapshot must be a copy of the slice")
	}
}

func TestLookups(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("first"))
	ph, _ := conv.Append(NewPlaceholder())
	conv.Append(NewUserMessage("second"))

	if got := conv.LastUserMessage(); got == nil || got.Text != "second" {
		t.Errorf("LastUserMessage = %v", got)
	}
	if got := conv.Placeholder(); got == nil || got.ID != ph.ID {
		t.Errorf("Placeholder = %v", got)
	}
	// The placeholder is an assistant message but must not count as the
	// last delivered assistant response.
	if got := conv.LastAssistantMessage(); got != nil {
		t.Errorf("LastAssistantMessage = %v, want nil", got)
	}
}

func TestTitle(t *testing.T) {
	conv := NewConversation()
	if conv.Title() != "New conversation" {
		t.Errorf("empty title = %q", conv.Title())
	}
	conv.Append(NewNoticeMessage("welcome"))
	conv.Append(NewUserMessage("summarize my notes"))
	if conv.Title() != "summarize my notes" {
		t.Errorf("Title = %q", conv.Title())
	}
}
