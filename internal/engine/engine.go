// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine owns the conversation session: message lifecycle,
// in-flight request management, command routing, paced response
// reveal, media hand-off, and persistence mirroring. The surrounding
// views (TUI or plain REPL) render snapshots and forward user input;
// every mutation of the log happens here, under one lock, so ordering
// guarantees hold no matter which view is attached.
package engine

import (
	"context"
	"io"
	"sync"

	"github.com/morganforge/sage-tui/internal/api"
	"github.com/morganforge/sage-tui/internal/commands"
	"github.com/morganforge/sage-tui/internal/config"
	"github.com/morganforge/sage-tui/internal/media"
	"github.com/morganforge/sage-tui/internal/model"
	"github.com/morganforge/sage-tui/internal/persist"
	"github.com/morganforge/sage-tui/internal/reveal"
	"github.com/morganforge/sage-tui/internal/upload"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service is the slice of the remote client the engine calls.
// *api.Client satisfies it; tests substitute fakes.
type Service interface {
	Chat(ctx context.Context, message, sessionID string, history []api.HistoryMessage) (*api.ChatResult, error)
	Summarize(ctx context.Context, text string, bullets int) (string, error)
	Keywords(ctx context.Context, text string, topK int) ([]string, error)
	ExplainFile(ctx context.Context, filename string, bullets int) (*api.Explanation, error)
	Upload(ctx context.Context, name string, r io.Reader) (*api.FileInfo, error)
}

// Defaults the service applies when the client sends none; kept in
// sync with the request payloads below.
const (
	summarizeBullets = 3
	keypointsTopK    = 8
	explainBullets   = 4
	historyWindow    = 20
)

const welcomeText = "Hi! Ask me anything, upload a file, or type /help to see commands."

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the conversation session. One instance lives per run.
type Engine struct {
	service    Service
	controller *Controller
	router     *commands.Router
	store      persist.Strategy
	revealer   *reveal.Runner
	media      *media.Adapter
	pipeline   *upload.Pipeline
	cfg        *config.Config

	mu        sync.Mutex
	log       *model.Conversation
	sessionID string
	busy      bool

	events chan Event
	wg     sync.WaitGroup
}

// Options wires the engine's collaborators. Service and Config are
// required; a nil Store disables mirroring and a nil Media disables
// speech and capture.
type Options struct {
	Service Service
	Config  *config.Config
	Store   persist.Strategy
	Media   *media.Adapter
}

// New creates an engine. Call Start to seed the log.
func New(opts Options) *Engine {
	m := opts.Media
	if m == nil {
		m = media.New(media.Capabilities{})
	}
	return &Engine{
		service:    opts.Service,
		controller: NewController(),
		router:     commands.NewRouter(),
		store:      opts.Store,
		revealer:   reveal.NewRunner(),
		media:      m,
		pipeline:   upload.NewPipeline(opts.Service),
		cfg:        opts.Config,
		log:        model.NewConversation(),
		events:     make(chan Event, 64),
	}
}

// Events is the change notification stream. The channel is never
// closed; consumers stop reading when they shut down.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Router exposes the command set, for input completion and help.
func (e *Engine) Router() *commands.Router {
	return e.router
}

// Media exposes the media adapter, for capability display.
func (e *Engine) Media() *media.Adapter {
	return e.media
}

// Start seeds the log from the persistence strategy. A failed or
// empty restore yields a fresh log with a welcome notice; restore
// failure is never fatal.
func (e *Engine) Start(ctx context.Context) {
	var restored []model.Message
	if e.store != nil {
		if msgs, err := e.store.Load(ctx); err == nil {
			restored = msgs
		}
	}

	e.mu.Lock()
	for i := range restored {
		msg := restored[i]
		e.log.Append(&msg)
	}
	if e.log.IsEmpty() {
		e.log.Append(model.NewNoticeMessage(welcomeText))
	}
	e.mu.Unlock()
	e.emit(Event{Kind: EventLogChanged})
}

// Shutdown stops in-flight work, waits for operation goroutines, and
// writes a final mirror.
func (e *Engine) Shutdown(ctx context.Context) {
	e.controller.Invalidate()
	e.media.CancelSpeech()
	e.wg.Wait()
	e.mirror(ctx)
	if e.store != nil {
		e.store.Close()
	}
}

// Snapshot returns a copy of the log for rendering. Safe to hold
// across engine mutations.
func (e *Engine) Snapshot() []model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Message, 0, e.log.Len())
	for _, msg := range e.log.Messages {
		out = append(out, *msg)
	}
	return out
}

// Busy reports whether an operation is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// emit delivers an event without blocking; a full channel drops the
// event, which is safe because consumers re-read state on the next one.
func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// append adds a message to the log under the engine lock and notifies.
func (e *Engine) append(msg *model.Message) *model.Message {
	e.mu.Lock()
	stored, err := e.log.Append(msg)
	e.mu.Unlock()
	if err != nil {
		return nil
	}
	e.emit(Event{Kind: EventLogChanged, MessageID: stored.ID})
	return stored
}

// appendPlaceholder installs the typing placeholder for generation
// gen, swapping out whatever placeholder a superseded operation left
// behind. The removal and the append happen under one lock hold so
// the log never shows two placeholders at once. Returns nil when gen
// has already been superseded.
func (e *Engine) appendPlaceholder(gen uint64) *model.Message {
	e.mu.Lock()
	if !e.controller.Current(gen) {
		e.mu.Unlock()
		return nil
	}
	if prev := e.log.Placeholder(); prev != nil {
		e.log.RemoveByID(prev.ID)
	}
	stored, err := e.log.Append(model.NewPlaceholder())
	e.mu.Unlock()
	if err != nil {
		return nil
	}
	e.emit(Event{Kind: EventLogChanged, MessageID: stored.ID})
	return stored
}

// remove deletes a message by id; idempotent.
func (e *Engine) remove(id string) {
	e.mu.Lock()
	removed := e.log.RemoveByID(id)
	e.mu.Unlock()
	if removed {
		e.emit(Event{Kind: EventLogChanged, MessageID: id})
	}
}

// setBusy flips the busy flag and notifies on change.
func (e *Engine) setBusy(busy bool) {
	e.mu.Lock()
	changed := e.busy != busy
	e.busy = busy
	e.mu.Unlock()
	if changed {
		e.emit(Event{Kind: EventBusyChanged})
	}
}

// releaseBusy clears the busy flag only while gen is still the
// current generation. The staleness check and the flip share one lock
// hold, so a superseded operation can never stop the spinner out from
// under its successor.
func (e *Engine) releaseBusy(gen uint64) {
	e.mu.Lock()
	if !e.controller.Current(gen) {
		e.mu.Unlock()
		return
	}
	changed := e.busy
	e.busy = false
	e.mu.Unlock()
	if changed {
		e.emit(Event{Kind: EventBusyChanged})
	}
}

// mirror writes the settled log to the persistence strategy.
// Placeholders and in-reveal messages are transient and excluded.
func (e *Engine) mirror(ctx context.Context) {
	if e.store == nil {
		return
	}
	e.mu.Lock()
	settled := make([]model.Message, 0, e.log.Len())
	for _, msg := range e.log.Messages {
		if msg.Status == model.StatusTyping {
			continue
		}
		settled = append(settled, *msg)
	}
	e.mu.Unlock()
	e.store.Mirror(ctx, settled)
}

// historyWindowLocked builds the trailing context window sent with
// chat requests. Caller holds e.mu.
func (e *Engine) historyWindowLocked() []api.HistoryMessage {
	var window []api.HistoryMessage
	for _, msg := range e.log.Messages {
		if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
			continue
		}
		if msg.Status == model.StatusTyping {
			continue
		}
		window = append(window, api.HistoryMessage{
			ID:        msg.ID,
			Role:      msg.Role.String(),
			Content:   msg.Text,
			Timestamp: msg.Timestamp,
		})
	}
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}
	return window
}
