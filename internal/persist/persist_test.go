// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/morganforge/sage-tui/internal/api"
	"github.com/morganforge/sage-tui/internal/model"
)

func testMessages(n int) []model.Message {
	msgs := make([]model.Message, n)
	for i := range msgs {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msgs[i] = model.Message{
			ID:        fmt.Sprintf("msg_%04d", i),
			Role:      role,
			Text:      fmt.Sprintf("turn %d", i),
			Timestamp: time.Date(2025, 6, 1, 12, 0, i, 0, time.UTC),
			Status:    model.StatusDelivered,
		}
	}
	return msgs
}

func TestLocalStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewLocalStore(path, 200)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	want := testMessages(6)
	want[5].Attachment = &model.Attachment{
		FileID:       "f_1",
		OriginalName: "notes.pdf",
		FileType:     "pdf",
	}

	if err := store.Mirror(ctx, want); err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load returned %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Role != want[i].Role || got[i].Text != want[i].Text {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("message %d timestamp = %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
	if got[5].Attachment == nil || got[5].Attachment.FileID != "f_1" {
		t.Errorf("attachment not restored: %+v", got[5].Attachment)
	}
}

func TestLocalStoreEmptyLoad(t *testing.T) {
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "history.db"), 200)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of empty store failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty store returned %d messages", len(got))
	}
}

func TestLocalStoreCapsSnapshot(t *testing.T) {
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "history.db"), 10)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Mirror(ctx, testMessages(25)); err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Fatalf("Load returned %d messages, want cap of 10", len(got))
	}
	// Tail wins: the oldest retained message is turn 15.
	if got[0].Text != "turn 15" {
		t.Errorf("first retained message = %q, want %q", got[0].Text, "turn 15")
	}
	if got[9].Text != "turn 24" {
		t.Errorf("last retained message = %q, want %q", got[9].Text, "turn 24")
	}
}

func TestLocalStoreMirrorReplaces(t *testing.T) {
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "history.db"), 200)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Mirror(ctx, testMessages(8)); err != nil {
		t.Fatal(err)
	}
	if err := store.Mirror(ctx, testMessages(3)); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("Load returned %d messages after re-mirror, want 3", len(got))
	}
}

// fakeHistorySource returns canned account history.
type fakeHistorySource struct {
	history []api.HistoryMessage
	err     error
}

func (f *fakeHistorySource) History(ctx context.Context) ([]api.HistoryMessage, error) {
	return f.history, f.err
}

func TestServerStoreLoad(t *testing.T) {
	source := &fakeHistorySource{history: []api.HistoryMessage{
		{ID: "1", Role: "user", Content: "what is osmosis"},
		{ID: "2", Role: "assistant", Content: "Osmosis is ..."},
		{ID: "3", Role: "tool", Content: "internal"},
	}}

	store := NewServerStore(source)
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load returned %d messages, want 2 (unknown role skipped)", len(got))
	}
	if got[0].Role != model.RoleUser || got[1].Role != model.RoleAssistant {
		t.Errorf("roles = %v, %v", got[0].Role, got[1].Role)
	}
	if got[0].Status != model.StatusDelivered {
		t.Errorf("restored message status = %v, want delivered", got[0].Status)
	}
}

func TestServerStoreLoadError(t *testing.T) {
	source := &fakeHistorySource{err: api.ErrUnreachable}
	store := NewServerStore(source)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("Load should surface the transport error")
	}
}

func TestServerStoreMirrorNoop(t *testing.T) {
	store := NewServerStore(&fakeHistorySource{})
	if err := store.Mirror(context.Background(), testMessages(4)); err != nil {
		t.Errorf("Mirror should be a no-op, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close should be a no-op, got %v", err)
	}
}
