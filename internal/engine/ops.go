// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/morganforge/sage-tui/internal/commands"
	"github.com/morganforge/sage-tui/internal/export"
	"github.com/morganforge/sage-tui/internal/media"
	"github.com/morganforge/sage-tui/internal/model"
	"github.com/morganforge/sage-tui/internal/upload"
)

// =============================================================================
// SEND FLOW
// =============================================================================

// Send routes one line of user input. Free text and remote commands
// start an operation; local commands act immediately; unknown commands
// and empty payloads produce an informational message with no network
// call.
func (e *Engine) Send(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}

	route := e.router.Route(raw)
	switch route.Kind {
	case commands.KindInfo:
		e.append(model.NewNoticeMessage(route.Info))
	case commands.KindLocal:
		e.handleLocal(route)
	default:
		e.dispatch(route, raw, true)
	}
}

// Regenerate re-runs the last user turn without appending it again.
func (e *Engine) Regenerate() {
	e.mu.Lock()
	last := e.log.LastUserMessage()
	e.mu.Unlock()
	if last == nil {
		e.append(model.NewNoticeMessage("Nothing to regenerate yet."))
		return
	}
	e.dispatch(e.router.Route(last.Text), last.Text, false)
}

// Stop is the global cancel: it aborts the in-flight request or
// reveal and any speech playback atomically. If a recording is in
// progress it finishes the capture and feeds the transcript into the
// normal send flow instead.
func (e *Engine) Stop() {
	if e.media.Recording() {
		e.finishRecording()
		return
	}
	e.controller.Cancel()
	e.media.CancelSpeech()
}

// NewSession mirrors the current log one last time, then discards it
// and starts fresh.
func (e *Engine) NewSession() {
	e.controller.Invalidate()
	e.media.CancelSpeech()
	e.mirror(context.Background())
	e.setBusy(false)

	e.mu.Lock()
	e.log = model.NewConversation()
	e.log.Append(model.NewNoticeMessage(welcomeText))
	e.sessionID = ""
	e.mu.Unlock()
	e.emit(Event{Kind: EventLogChanged})
}

// dispatch appends the user turn and placeholder, then runs the remote
// operation under a fresh controller generation. Late results from a
// superseded generation are discarded, never appended.
func (e *Engine) dispatch(route commands.Route, raw string, appendUser bool) {
	if appendUser {
		e.append(model.NewUserMessage(raw))
	}

	ctx, gen := e.controller.Begin(context.Background())
	e.setBusy(true)
	placeholder := e.appendPlaceholder(gen)
	if placeholder == nil {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		text, err := e.callRemote(ctx, route)

		// The placeholder comes out before any result lands, whether
		// the operation succeeded, failed, or lost to a newer one. A
		// successor may have already swapped it out; remove is
		// idempotent either way.
		e.remove(placeholder.ID)

		if !e.controller.Current(gen) {
			return
		}
		defer e.releaseBusy(gen)
		defer e.controller.Finish(gen)

		if err != nil {
			if errors.Is(err, context.Canceled) {
				e.append(model.NewNoticeMessage("Stopped."))
			} else {
				e.append(model.NewErrorNotice(err.Error()))
			}
			e.mirror(context.Background())
			return
		}

		if route.Op == commands.OpChat {
			e.revealAssistant(ctx, gen, text)
		} else {
			msg := model.NewAssistantMessage(text)
			msg.Status = model.StatusDelivered
			e.append(msg)
		}
		e.mirror(context.Background())
	}()
}

// callRemote performs the routed remote operation and renders its
// result as display text.
func (e *Engine) callRemote(ctx context.Context, route commands.Route) (string, error) {
	switch route.Op {
	case commands.OpChat:
		e.mu.Lock()
		sessionID := e.sessionID
		window := e.historyWindowLocked()
		e.mu.Unlock()

		result, err := e.service.Chat(ctx, route.Payload, sessionID, window)
		if err != nil {
			return "", err
		}
		if result.SessionID != "" {
			e.mu.Lock()
			e.sessionID = result.SessionID
			e.mu.Unlock()
		}
		return result.Response, nil

	case commands.OpSummarize:
		return e.service.Summarize(ctx, route.Payload, summarizeBullets)

	case commands.OpKeypoints:
		keywords, err := e.service.Keywords(ctx, route.Payload, keypointsTopK)
		if err != nil {
			return "", err
		}
		if len(keywords) == 0 {
			return "No key points found.", nil
		}
		var sb strings.Builder
		sb.WriteString("Key points:\n")
		for _, kw := range keywords {
			sb.WriteString("- ")
			sb.WriteString(kw)
			sb.WriteString("\n")
		}
		return strings.TrimRight(sb.String(), "\n"), nil

	case commands.OpExplainFile:
		explanation, err := e.service.ExplainFile(ctx, route.Payload, explainBullets)
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, len(explanation.Partials)+1)
		parts = append(parts, explanation.Partials...)
		if explanation.Final != "" {
			parts = append(parts, explanation.Final)
		}
		return strings.Join(parts, "\n\n"), nil
	}
	return "", fmt.Errorf("unroutable operation %d", route.Op)
}

// revealAssistant paces the final chat response into the log. A
// cancelled reveal keeps whatever text had been shown; the message
// settles as delivered either way. Triggers auto-speak on full
// completion.
func (e *Engine) revealAssistant(ctx context.Context, gen uint64, text string) {
	target := e.appendPlaceholder(gen)
	if target == nil {
		return
	}

	err := e.revealer.Run(ctx, text, func(partial string) {
		e.mu.Lock()
		e.log.ReplaceText(target.ID, partial)
		e.mu.Unlock()
		e.emit(Event{Kind: EventRevealStep, MessageID: target.ID})
	})

	e.mu.Lock()
	stored := e.log.GetByID(target.ID)
	empty := stored == nil || stored.Text == ""
	if stored != nil {
		stored.Status = model.StatusDelivered
	}
	e.mu.Unlock()

	if empty {
		// Cancelled before anything appeared: no half-message.
		e.remove(target.ID)
		return
	}
	e.emit(Event{Kind: EventLogChanged, MessageID: target.ID})

	if err == nil && e.cfg != nil && e.cfg.Speech.AutoSpeak {
		e.media.Speak(text, media.SpeakOptions{
			Rate:  e.cfg.Speech.Rate,
			Voice: e.cfg.Speech.Voice,
		})
	}
}

// =============================================================================
// LOCAL COMMANDS
// =============================================================================

func (e *Engine) handleLocal(route commands.Route) {
	switch route.Local {
	case "/help":
		e.append(model.NewNoticeMessage(e.router.Registry().HelpText()))

	case "/new":
		e.NewSession()

	case "/save":
		e.mirror(context.Background())
		e.append(model.NewNoticeMessage("Conversation saved."))

	case "/export":
		e.exportConversation(route.Args)

	case "/speak":
		e.speakLast()

	case "/record":
		e.startRecording()

	case "/stop":
		e.Stop()

	case "/quit":
		e.emit(Event{Kind: EventQuit})
	}
}

func (e *Engine) exportConversation(args []string) {
	if len(args) == 0 {
		e.append(model.NewNoticeMessage("Usage: /export <json|markdown|txt> [path]"))
		return
	}
	exporter := export.ForFormat(args[0])
	if exporter == nil {
		e.append(model.NewNoticeMessage(fmt.Sprintf("Unknown export format %q. Use json, markdown, or txt.", args[0])))
		return
	}
	path := ""
	if len(args) > 1 {
		path = args[1]
	}

	e.mu.Lock()
	conv := &model.Conversation{
		ID:        e.log.ID,
		CreatedAt: e.log.CreatedAt,
		UpdatedAt: e.log.UpdatedAt,
	}
	for _, msg := range e.log.Messages {
		copied := *msg
		conv.Messages = append(conv.Messages, &copied)
	}
	e.mu.Unlock()

	written, err := export.ExportToFile(conv, exporter, path)
	if err != nil {
		e.append(model.NewErrorNotice(err.Error()))
		return
	}
	e.append(model.NewNoticeMessage("Exported to " + written))
}

func (e *Engine) speakLast() {
	if !e.media.Capabilities().CanSpeak() {
		e.append(model.NewNoticeMessage("No speech synthesis tool is available on this machine."))
		return
	}
	e.mu.Lock()
	last := e.log.LastAssistantMessage()
	e.mu.Unlock()
	if last == nil {
		e.append(model.NewNoticeMessage("Nothing to speak yet."))
		return
	}
	opts := media.SpeakOptions{}
	if e.cfg != nil {
		opts.Rate = e.cfg.Speech.Rate
		opts.Voice = e.cfg.Speech.Voice
	}
	if err := e.media.Speak(last.Text, opts); err != nil {
		e.append(model.NewErrorNotice(err.Error()))
	}
}

// =============================================================================
// RECORDING
// =============================================================================

func (e *Engine) startRecording() {
	if !e.media.Capabilities().CanTranscribe() {
		e.append(model.NewNoticeMessage("Recording needs a microphone tool and a transcriber; neither was found."))
		return
	}
	if err := e.media.StartRecording(); err != nil {
		e.append(model.NewErrorNotice(err.Error()))
		return
	}
	e.append(model.NewNoticeMessage("Recording. Type /stop to finish and send."))
}

// finishRecording stops the capture, transcribes it, and feeds the
// transcript through the normal send flow so voice and typed input
// share one path.
func (e *Engine) finishRecording() {
	wavPath, err := e.media.StopRecording()
	if err != nil {
		e.append(model.NewErrorNotice(err.Error()))
		return
	}

	e.setBusy(true)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer os.Remove(wavPath)

		transcript, err := e.media.Transcribe(context.Background(), wavPath)
		e.setBusy(false)
		if err != nil {
			e.append(model.NewErrorNotice(err.Error()))
			return
		}
		e.Send(transcript)
	}()
}

// =============================================================================
// FILE UPLOADS
// =============================================================================

// UploadBatch uploads paths strictly in order. Each success appends
// one file message; each failure appends one error notice and the
// batch continues. One loader placeholder is visible per file, never
// more.
func (e *Engine) UploadBatch(paths []string) {
	if len(paths) == 0 {
		return
	}

	ctx, gen := e.controller.Begin(context.Background())
	e.setBusy(true)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		placeholder := e.appendPlaceholder(gen)
		_, err := e.pipeline.Process(ctx, paths, func(res upload.Result) {
			if placeholder != nil {
				e.remove(placeholder.ID)
			}
			if !e.controller.Current(gen) {
				return
			}
			if res.Err != nil {
				e.append(model.NewErrorNotice(fmt.Sprintf("%s: %v", res.Name, res.Err)))
			} else {
				msg := model.NewFileMessage(model.Attachment{
					FileID:       res.Info.FileID,
					OriginalName: res.Info.OriginalName,
					FileType:     res.Info.FileType,
				})
				msg.Status = model.StatusDelivered
				e.append(msg)
			}
			if res.Index < len(paths)-1 {
				placeholder = e.appendPlaceholder(gen)
			}
		})
		if placeholder != nil {
			e.remove(placeholder.ID)
		}

		if !e.controller.Current(gen) {
			return
		}
		e.controller.Finish(gen)
		e.releaseBusy(gen)
		if errors.Is(err, context.Canceled) {
			e.append(model.NewNoticeMessage("Upload stopped."))
			return
		}
		if err == nil {
			e.mirror(context.Background())
		}
	}()
}

// NoteUpload records the outcome of an upload performed outside the
// conversation flow, such as a drop-folder pickup.
func (e *Engine) NoteUpload(res upload.Result) {
	if res.Err != nil {
		e.append(model.NewErrorNotice(fmt.Sprintf("%s: %v", res.Name, res.Err)))
		return
	}
	msg := model.NewFileMessage(model.Attachment{
		FileID:       res.Info.FileID,
		OriginalName: res.Info.OriginalName,
		FileType:     res.Info.FileType,
	})
	msg.Status = model.StatusDelivered
	e.append(msg)
	e.mirror(context.Background())
}
