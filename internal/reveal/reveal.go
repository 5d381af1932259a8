// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal paces a finished response into incremental output.
//
// The service returns a complete reply in one round trip. Pasting it
// into the log all at once reads as broken to anyone used to
// token-by-token generation, so short replies are revealed rune by
// rune and long replies in sentence-aware chunks, each step separated
// by a small randomized delay. The loop polls its context every step,
// so the same cancellation that aborts a network call stops a reveal
// mid-animation.
package reveal

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// POLICY
// =============================================================================

const (
	// CharThreshold is the length at or below which a response is
	// revealed rune by rune instead of in chunks.
	CharThreshold = 400

	// TargetChunkLen is the preferred chunk length for long responses.
	// A chunk breaks at a sentence or line boundary in the back half
	// of the window [TargetChunkLen/2, TargetChunkLen] when one
	// exists, and at a hard cut otherwise.
	TargetChunkLen = 200

	charDelayMin  = 8 * time.Millisecond
	charDelayMax  = 20 * time.Millisecond
	chunkDelayMin = 120 * time.Millisecond
	chunkDelayMax = 260 * time.Millisecond
)

// =============================================================================
// CHUNKING
// =============================================================================

// Chunks splits text into reveal steps according to the pacing policy.
// Short text yields one step per rune; long text yields sentence-aware
// chunks. Concatenating the result always reproduces text exactly.
func Chunks(text string) []string {
	runes := []rune(text)
	if len(runes) <= CharThreshold {
		steps := make([]string, len(runes))
		for i, r := range runes {
			steps[i] = string(r)
		}
		return steps
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= TargetChunkLen {
			chunks = append(chunks, string(runes))
			break
		}
		cut := boundaryCut(runes)
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}

// boundaryCut finds where to end the next chunk. It scans backwards
// from the target length to half the target, stopping at the first
// sentence end or newline; absent one, it cuts at the target.
func boundaryCut(runes []rune) int {
	window := runes[:TargetChunkLen]
	for i := TargetChunkLen - 1; i >= TargetChunkLen/2; i-- {
		if isBoundary(window, i) {
			return i + 1
		}
	}
	return TargetChunkLen
}

// isBoundary reports whether position i ends a sentence or line.
func isBoundary(runes []rune, i int) bool {
	switch runes[i] {
	case '\n':
		return true
	case '.', '!', '?':
		// A period only ends a sentence when followed by whitespace
		// or the end of the window, so "3.14" stays intact.
		return i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n'
	}
	return false
}

// =============================================================================
// PACED REVEAL
// =============================================================================

// Runner paces reveal steps with randomized delays. The zero sleep
// function means real time; tests inject their own.
type Runner struct {
	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner returns a Runner using real time.
func NewRunner() *Runner {
	return &Runner{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: sleepCtx,
	}
}

// Run reveals text step by step, calling emit with the accumulated
// prefix after each step. It stops early and returns ctx.Err() when
// cancelled; the last emitted prefix is whatever had been revealed.
func (r *Runner) Run(ctx context.Context, text string, emit func(partial string)) error {
	steps := Chunks(text)
	perChunk := len([]rune(text)) > CharThreshold

	var sb strings.Builder
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		sb.WriteString(step)
		emit(sb.String())

		var delay time.Duration
		if perChunk {
			delay = r.jitter(chunkDelayMin, chunkDelayMax)
		} else {
			delay = r.jitter(charDelayMin, charDelayMax)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

// jitter draws a delay in [min, max). A cancelled reveal can briefly
// overlap its successor on the same Runner, so draws are serialized.
func (r *Runner) jitter(min, max time.Duration) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + time.Duration(r.rng.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
