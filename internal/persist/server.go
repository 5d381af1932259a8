// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"context"

	"github.com/morganforge/sage-tui/internal/api"
	"github.com/morganforge/sage-tui/internal/model"
)

// =============================================================================
// SERVER STORE
// =============================================================================

// HistorySource is the slice of the service client the server store
// needs. *api.Client satisfies it.
type HistorySource interface {
	History(ctx context.Context) ([]api.HistoryMessage, error)
}

// ServerStore restores the conversation from the account history the
// service keeps. The service records turns as a side effect of chat
// calls, so Mirror has nothing to do.
type ServerStore struct {
	source HistorySource
}

// NewServerStore returns a server-backed strategy.
func NewServerStore(source HistorySource) *ServerStore {
	return &ServerStore{source: source}
}

// Load replays the account history into log messages, oldest first.
// Roles the service may emit outside the user/assistant pair are
// skipped rather than invented locally.
func (s *ServerStore) Load(ctx context.Context) ([]model.Message, error) {
	history, err := s.source.History(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(history))
	for _, h := range history {
		role := model.Role(h.Role)
		if role != model.RoleUser && role != model.RoleAssistant {
			continue
		}
		msg := model.Message{
			ID:        h.ID,
			Role:      role,
			Text:      h.Content,
			Timestamp: h.Timestamp,
			Status:    model.StatusDelivered,
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Mirror is a no-op: the service already records each settled turn.
func (s *ServerStore) Mirror(ctx context.Context, messages []model.Message) error {
	return nil
}

// Close is a no-op.
func (s *ServerStore) Close() error {
	return nil
}
