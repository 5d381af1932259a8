// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"sync"
)

// =============================================================================
// REQUEST CONTROLLER
// =============================================================================

// Controller enforces the latest-wins policy: at most one operation is
// current at a time, starting a new one cancels the previous, and a
// result from a superseded operation can be detected and discarded.
//
// Must be used as a pointer so the mutex is never copied.
type Controller struct {
	mu         sync.Mutex
	generation uint64
	cancelFunc context.CancelFunc
}

// NewController creates a controller with nothing running.
func NewController() *Controller {
	return &Controller{}
}

// Begin cancels any running operation and starts a new one. The
// returned context is cancelled when a newer operation begins or
// Cancel is called; the generation token identifies this operation for
// later staleness checks.
func (c *Controller) Begin(parent context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.generation++
	ctx, cancel := context.WithCancel(parent)
	c.cancelFunc = cancel
	return ctx, c.generation
}

// Current reports whether the operation identified by gen is still the
// latest one. A stale operation's result must be discarded, never
// applied.
func (c *Controller) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// Cancel aborts the running operation, if any. Idempotent and safe to
// call with nothing running.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
}

// Invalidate aborts the running operation and advances the generation
// so the aborted goroutine can no longer pass a Current check. Cancel
// leaves the generation alone so the cancelled operation may still
// report its own stop; Invalidate is for the cases where the log it
// would report into is about to be replaced.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
	c.generation++
}

// Finish releases the operation identified by gen if it is still
// current. A stale gen is a no-op, so a slow operation finishing late
// cannot cancel its successor.
func (c *Controller) Finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
}
