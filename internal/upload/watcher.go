// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// OUTBOX WATCHER
// =============================================================================

// Watcher monitors a drop folder and submits files placed there as
// uploads. Events are debounced so a file still being written is not
// picked up half-finished.
type Watcher struct {
	dir      string
	pipeline *Pipeline
	emit     func(Result)
	debounce time.Duration

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a watcher over dir. Settled files are uploaded
// through pipeline and each result is passed to emit.
func NewWatcher(dir string, pipeline *Pipeline, emit func(Result)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		pipeline: pipeline,
		emit:     emit,
		debounce: 500 * time.Millisecond,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]time.Time),
	}, nil
}

// Watch starts monitoring the drop folder, creating it if missing.
func (w *Watcher) Watch() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents collects write and create events into the pending set.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// processPending uploads files whose last event is older than the
// debounce window, then removes them from the folder.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) flushSettled() {
	now := time.Now()

	w.mu.Lock()
	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	// Stable submission order within one flush.
	sort.Strings(settled)

	if _, err := w.pipeline.Process(w.ctx, settled, func(res Result) {
		w.emit(res)
		if res.Err == nil {
			os.Remove(filepath.Join(w.dir, res.Name))
		}
	}); err != nil {
		return
	}
}

// shouldIgnore filters directories, hidden files, and editor
// temporaries out of the upload stream.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return true
	}
	return false
}
