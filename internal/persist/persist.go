// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persist stores and restores the conversation log across
// application runs. Exactly one strategy is active per session: a
// local SQLite mirror, or replay from the remote history endpoint.
package persist

import (
	"context"
	"fmt"

	"github.com/morganforge/sage-tui/internal/api"
	"github.com/morganforge/sage-tui/internal/config"
	"github.com/morganforge/sage-tui/internal/model"
)

// =============================================================================
// STRATEGY
// =============================================================================

// Strategy restores a prior conversation at startup and mirrors the
// log as it grows. Implementations must tolerate Load failing without
// corrupting later Mirror calls.
type Strategy interface {
	// Load returns the restored conversation, oldest first. A missing
	// or empty store returns a nil slice and no error.
	Load(ctx context.Context) ([]model.Message, error)

	// Mirror records the current log snapshot. Only messages in a
	// settled state should be passed; transient placeholders are the
	// caller's responsibility to exclude.
	Mirror(ctx context.Context, messages []model.Message) error

	// Close releases underlying resources.
	Close() error
}

// New selects a strategy from configuration. Local mode opens the
// SQLite store at cfg.Persistence.Path; server mode replays the remote
// account history through client.
func New(cfg *config.Config, client *api.Client) (Strategy, error) {
	switch cfg.Persistence.Mode {
	case config.ModeServer:
		return NewServerStore(client), nil
	case config.ModeLocal:
		return NewLocalStore(cfg.Persistence.Path, cfg.Persistence.MaxMessages)
	default:
		return nil, fmt.Errorf("unknown persistence mode %q", cfg.Persistence.Mode)
	}
}
