// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload sends files to the service. Batches are processed
// strictly sequentially so progress feedback stays unambiguous and
// results land in submission order. An optional outbox watcher turns a
// drop folder into an upload source.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/morganforge/sage-tui/internal/api"
)

// =============================================================================
// PIPELINE
// =============================================================================

// Uploader is the slice of the service client the pipeline needs.
// *api.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (*api.FileInfo, error)
}

// Result is the outcome for one file in a batch. Exactly one of Info
// and Err is set.
type Result struct {
	// BatchID groups results from one Process call.
	BatchID string

	// Name is the submitted file's base name.
	Name string

	// Index is the file's position in the batch, starting at 0.
	Index int

	Info *api.FileInfo
	Err  error
}

// Pipeline uploads batches of files one at a time.
type Pipeline struct {
	uploader Uploader
}

// NewPipeline creates a pipeline over the given uploader.
func NewPipeline(uploader Uploader) *Pipeline {
	return &Pipeline{uploader: uploader}
}

// Process uploads paths in order, calling emit once per file as it
// settles. A failed file does not stop the rest of the batch; a
// cancelled context does. Returns the batch id.
func (p *Pipeline) Process(ctx context.Context, paths []string, emit func(Result)) (string, error) {
	batchID := uuid.NewString()

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return batchID, err
		}
		res := Result{
			BatchID: batchID,
			Name:    filepath.Base(path),
			Index:   i,
		}
		info, err := p.uploadOne(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return batchID, ctx.Err()
			}
			res.Err = err
		} else {
			res.Info = info
		}
		emit(res)
	}
	return batchID, nil
}

func (p *Pipeline) uploadOne(ctx context.Context, path string) (*api.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return p.uploader.Upload(ctx, filepath.Base(path), f)
}
