// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"testing"
)

func TestControllerLatestWins(t *testing.T) {
	c := NewController()

	ctx1, gen1 := c.Begin(context.Background())
	if !c.Current(gen1) {
		t.Fatal("first operation should be current")
	}

	ctx2, gen2 := c.Begin(context.Background())
	if ctx1.Err() == nil {
		t.Error("starting a new operation must cancel the previous context")
	}
	if c.Current(gen1) {
		t.Error("superseded generation still reported current")
	}
	if !c.Current(gen2) {
		t.Error("new generation should be current")
	}
	if ctx2.Err() != nil {
		t.Error("new context should be live")
	}
}

func TestControllerCancelIdempotent(t *testing.T) {
	c := NewController()

	// Nothing running: must be safe.
	c.Cancel()
	c.Cancel()

	ctx, gen := c.Begin(context.Background())
	c.Cancel()
	c.Cancel()
	if ctx.Err() == nil {
		t.Error("cancel should abort the running context")
	}
	// Cancelling does not change which generation is latest.
	if !c.Current(gen) {
		t.Error("cancel must not invalidate the generation token")
	}
}

func TestControllerInvalidateSupersedes(t *testing.T) {
	c := NewController()

	// Nothing running: must be safe.
	c.Invalidate()

	ctx, gen := c.Begin(context.Background())
	c.Invalidate()
	if ctx.Err() == nil {
		t.Error("invalidate should abort the running context")
	}
	// Unlike Cancel, the aborted operation is also superseded, so it
	// cannot report into whatever replaces the log.
	if c.Current(gen) {
		t.Error("invalidated generation still reported current")
	}
}

func TestControllerFinishIgnoresStale(t *testing.T) {
	c := NewController()

	_, gen1 := c.Begin(context.Background())
	ctx2, gen2 := c.Begin(context.Background())

	// A slow predecessor finishing late must not cancel its successor.
	c.Finish(gen1)
	if ctx2.Err() != nil {
		t.Fatal("stale Finish cancelled the current operation")
	}

	c.Finish(gen2)
	if ctx2.Err() == nil {
		t.Fatal("current Finish should release the context")
	}
}
