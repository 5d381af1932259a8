// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morganforge/sage-tui/internal/model"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func testConversation(t *testing.T) *model.Conversation {
	t.Helper()
	conv := model.NewConversation()
	for _, m := range []*model.Message{
		model.NewUserMessage("explain osmosis"),
		model.NewAssistantMessage("Osmosis is the movement of water across a membrane."),
	} {
		if _, err := conv.Append(m); err != nil {
			t.Fatal(err)
		}
	}
	fileMsg := model.NewFileMessage(model.Attachment{
		FileID:       "f_1",
		OriginalName: "notes.pdf",
		FileType:     "pdf",
	})
	if _, err := conv.Append(fileMsg); err != nil {
		t.Fatal(err)
	}
	return conv
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"json", ".json"},
		{"markdown", ".md"},
		{"md", ".md"},
		{"txt", ".txt"},
		{"TEXT", ".txt"},
	}
	for _, tc := range tests {
		e := ForFormat(tc.format)
		if e == nil {
			t.Errorf("ForFormat(%q) = nil", tc.format)
			continue
		}
		if e.FileExtension() != tc.ext {
			t.Errorf("ForFormat(%q).FileExtension() = %q, want %q", tc.format, e.FileExtension(), tc.ext)
		}
	}
	if ForFormat("docx") != nil {
		t.Error("unknown format should return nil")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	conv := testConversation(t)
	path := filepath.Join(t.TempDir(), "conv.json")

	written, err := ExportToFile(conv, &JSONExporter{}, path)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	restored, err := ImportJSON(written)
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if restored.ID != conv.ID {
		t.Errorf("ID = %q, want %q", restored.ID, conv.ID)
	}
	if restored.Len() != conv.Len() {
		t.Fatalf("restored %d messages, want %d", restored.Len(), conv.Len())
	}
	for i, msg := range restored.Messages {
		if msg.Text != conv.Messages[i].Text || msg.Role != conv.Messages[i].Role {
			t.Errorf("message %d mismatch: %+v", i, msg)
		}
		if msg.Status != model.StatusDelivered {
			t.Errorf("message %d status = %v, want delivered", i, msg.Status)
		}
	}
	if restored.Messages[2].Attachment == nil {
		t.Error("attachment lost in round trip")
	}
}

func TestImportJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := writeFile(path, "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportJSON(path); err == nil {
		t.Fatal("malformed export should fail to import")
	}

	path2 := filepath.Join(t.TempDir(), "badrole.json")
	if err := writeFile(path2, `{"id":"c1","messages":[{"id":"m1","role":"wizard","text":"hi"}]}`); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportJSON(path2); err == nil {
		t.Fatal("unknown role should fail to import")
	}
}

func TestMarkdownExport(t *testing.T) {
	conv := testConversation(t)
	out, err := (&MarkdownExporter{IncludeTimestamps: true}).Export(conv)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	text := string(out)
	for _, want := range []string{"explain osmosis", "movement of water", "notes.pdf"} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownSkipsPlaceholder(t *testing.T) {
	conv := testConversation(t)
	if _, err := conv.Append(model.NewPlaceholder()); err != nil {
		t.Fatal(err)
	}
	out, err := (&MarkdownExporter{}).Export(conv)
	if err != nil {
		t.Fatal(err)
	}
	// Three real turns rendered; the typing placeholder contributes
	// nothing.
	if got := strings.Count(string(out), "###"); got != 3 {
		t.Errorf("rendered %d turns, want 3:\n%s", got, out)
	}
}

func TestTextExport(t *testing.T) {
	conv := testConversation(t)
	out, err := (&TextExporter{}).Export(conv)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(string(out), "You: explain osmosis") {
		t.Errorf("text export missing user turn:\n%s", out)
	}
}

func TestExportEmptyConversationFails(t *testing.T) {
	conv := model.NewConversation()
	if _, err := (&MarkdownExporter{}).Export(conv); err == nil {
		t.Error("markdown export of empty conversation should fail")
	}
	if _, err := (&TextExporter{}).Export(conv); err == nil {
		t.Error("text export of empty conversation should fail")
	}
}
