// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/sage-tui/internal/model"
)

// =============================================================================
// SCHEMA
// =============================================================================

const localSchema = `
CREATE TABLE IF NOT EXISTS messages (
	position   INTEGER PRIMARY KEY,
	id         TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	timestamp  TEXT NOT NULL,
	file_id    TEXT NOT NULL DEFAULT '',
	file_name  TEXT NOT NULL DEFAULT '',
	file_type  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// =============================================================================
// LOCAL STORE
// =============================================================================

// LocalStore mirrors the conversation into a SQLite database on disk.
// Each Mirror call replaces the stored snapshot with the most recent
// maxMessages entries, so the file never grows without bound.
type LocalStore struct {
	db          *sql.DB
	maxMessages int
}

// NewLocalStore opens (creating if needed) the database at path.
func NewLocalStore(path string, maxMessages int) (*LocalStore, error) {
	if maxMessages <= 0 {
		maxMessages = 200
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &LocalStore{db: db, maxMessages: maxMessages}, nil
}

// Load returns the stored snapshot in insertion order.
func (s *LocalStore) Load(ctx context.Context) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, timestamp, file_id, file_name, file_type
		FROM messages ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var (
			msg      model.Message
			role, ts string
			fileID   string
			fileName string
			fileType string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Text, &ts, &fileID, &fileName, &fileType); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		msg.Role = model.Role(role)
		if !msg.Role.Valid() {
			// Skip rows written by a newer version rather than fail
			// the whole restore.
			continue
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			msg.Timestamp = parsed
		}
		msg.Status = model.StatusDelivered
		if fileID != "" {
			msg.Attachment = &model.Attachment{
				FileID:       fileID,
				OriginalName: fileName,
				FileType:     fileType,
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Mirror replaces the stored snapshot with the tail of messages.
func (s *LocalStore) Mirror(ctx context.Context, messages []model.Message) error {
	if len(messages) > s.maxMessages {
		messages = messages[len(messages)-s.maxMessages:]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (position, id, role, content, timestamp, file_id, file_name, file_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		var fileID, fileName, fileType string
		if msg.Attachment != nil {
			fileID = msg.Attachment.FileID
			fileName = msg.Attachment.OriginalName
			fileType = msg.Attachment.FileType
		}
		_, err := stmt.ExecContext(ctx, i, msg.ID, msg.Role.String(), msg.Text,
			msg.Timestamp.Format(time.RFC3339Nano), fileID, fileName, fileType)
		if err != nil {
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('mirrored_at', ?)",
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to update history metadata: %w", err)
	}

	return tx.Commit()
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}
