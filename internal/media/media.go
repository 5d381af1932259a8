// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package media adapts speech synthesis, microphone capture, and
// transcription to whatever command-line tools the host machine has.
// Capabilities are probed once at startup; a missing tool disables the
// corresponding control instead of failing when it is used.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNoSpeech     = errors.New("no speech synthesis tool available")
	ErrNoRecorder   = errors.New("no audio recording tool available")
	ErrNoTranscribe = errors.New("no transcription tool available")
	ErrNotRecording = errors.New("no recording in progress")
	ErrRecording    = errors.New("a recording is already in progress")
)

// =============================================================================
// CAPABILITIES
// =============================================================================

// Capabilities reports which media features the host supports and
// which tool backs each one.
type Capabilities struct {
	SpeechTool     string
	RecordTool     string
	TranscribeTool string
}

// CanSpeak reports whether speech synthesis is available.
func (c Capabilities) CanSpeak() bool { return c.SpeechTool != "" }

// CanRecord reports whether microphone capture is available.
func (c Capabilities) CanRecord() bool { return c.RecordTool != "" }

// CanTranscribe reports whether captured audio can be transcribed.
// Transcription requires capture as well.
func (c Capabilities) CanTranscribe() bool {
	return c.CanRecord() && c.TranscribeTool != ""
}

// Probe checks the host for supported tools. lookPath is injectable
// for tests; pass nil to use the real PATH.
func Probe(lookPath func(string) (string, error)) Capabilities {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return Capabilities{
		SpeechTool:     firstTool(lookPath, speechTools),
		RecordTool:     firstTool(lookPath, recordTools),
		TranscribeTool: firstTool(lookPath, transcribeTools),
	}
}

func firstTool(lookPath func(string) (string, error), candidates []string) string {
	for _, name := range candidates {
		if _, err := lookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// =============================================================================
// ADAPTER
// =============================================================================

// SpeakOptions tune speech synthesis.
type SpeakOptions struct {
	// Rate is words per minute.
	Rate int

	// Voice is the tool-specific voice or locale name. Empty uses
	// the tool default.
	Voice string
}

// Adapter drives the probed tools. Speech playback is exclusive:
// starting a new utterance cancels any in-progress one.
type Adapter struct {
	caps Capabilities

	mu        sync.Mutex
	speech    *exec.Cmd
	recording *recordingSession
}

type recordingSession struct {
	cmd  *exec.Cmd
	path string
	done chan error
}

// New creates an adapter over the given capabilities.
func New(caps Capabilities) *Adapter {
	return &Adapter{caps: caps}
}

// Capabilities returns the probed capability set.
func (a *Adapter) Capabilities() Capabilities { return a.caps }

// -----------------------------------------------------------------------------
// Speech
// -----------------------------------------------------------------------------

// Speak starts speaking text and returns without waiting for playback
// to finish. Any utterance already playing is cancelled first.
func (a *Adapter) Speak(text string, opts SpeakOptions) error {
	if !a.caps.CanSpeak() {
		return ErrNoSpeech
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelSpeechLocked()

	cmd := exec.Command(a.caps.SpeechTool, speechArgs(a.caps.SpeechTool, text, opts)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", a.caps.SpeechTool, err)
	}
	a.speech = cmd

	go func() {
		cmd.Wait()
		a.mu.Lock()
		if a.speech == cmd {
			a.speech = nil
		}
		a.mu.Unlock()
	}()
	return nil
}

// PauseSpeech suspends the current utterance, if any.
func (a *Adapter) PauseSpeech() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.speech == nil || a.speech.Process == nil {
		return nil
	}
	return pauseProcess(a.speech.Process)
}

// ResumeSpeech resumes a paused utterance, if any.
func (a *Adapter) ResumeSpeech() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.speech == nil || a.speech.Process == nil {
		return nil
	}
	return resumeProcess(a.speech.Process)
}

// CancelSpeech stops playback. Safe to call with nothing playing.
func (a *Adapter) CancelSpeech() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelSpeechLocked()
}

func (a *Adapter) cancelSpeechLocked() {
	if a.speech != nil && a.speech.Process != nil {
		a.speech.Process.Kill()
	}
	a.speech = nil
}

// speechArgs maps common synthesis tools to their flags.
func speechArgs(tool, text string, opts SpeakOptions) []string {
	base := filepath.Base(tool)
	switch base {
	case "say":
		args := []string{}
		if opts.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(opts.Rate))
		}
		if opts.Voice != "" {
			args = append(args, "-v", opts.Voice)
		}
		return append(args, text)
	default:
		// espeak / espeak-ng share a flag set.
		args := []string{}
		if opts.Rate > 0 {
			args = append(args, "-s", strconv.Itoa(opts.Rate))
		}
		if opts.Voice != "" {
			args = append(args, "-v", opts.Voice)
		}
		return append(args, text)
	}
}

// -----------------------------------------------------------------------------
// Recording
// -----------------------------------------------------------------------------

// StartRecording begins capturing microphone audio to a temporary WAV
// file. At most one recording may be active.
func (a *Adapter) StartRecording() error {
	if !a.caps.CanRecord() {
		return ErrNoRecorder
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recording != nil {
		return ErrRecording
	}

	f, err := os.CreateTemp("", "sage-rec-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create recording file: %w", err)
	}
	path := f.Name()
	f.Close()

	cmd := exec.Command(a.caps.RecordTool, recordArgs(a.caps.RecordTool, path)...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to start %s: %w", a.caps.RecordTool, err)
	}

	session := &recordingSession{cmd: cmd, path: path, done: make(chan error, 1)}
	go func() { session.done <- cmd.Wait() }()
	a.recording = session
	return nil
}

// Recording reports whether a capture is in progress.
func (a *Adapter) Recording() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recording != nil
}

// StopRecording ends the capture and returns the path of the recorded
// WAV file. The caller owns the file and should remove it when done.
func (a *Adapter) StopRecording() (string, error) {
	a.mu.Lock()
	session := a.recording
	a.recording = nil
	a.mu.Unlock()

	if session == nil {
		return "", ErrNotRecording
	}

	// An interrupt lets the recorder finalize the WAV header.
	stopRecordingProcess(session.cmd.Process)
	<-session.done

	if info, err := os.Stat(session.path); err != nil || info.Size() == 0 {
		os.Remove(session.path)
		return "", errors.New("recording produced no audio")
	}
	return session.path, nil
}

// recordArgs maps common capture tools to their flags.
func recordArgs(tool, path string) []string {
	base := filepath.Base(tool)
	switch base {
	case "arecord":
		return []string{"-q", "-f", "cd", "-t", "wav", path}
	case "rec": // sox front end
		return []string{"-q", path}
	default:
		return []string{path}
	}
}

// -----------------------------------------------------------------------------
// Transcription
// -----------------------------------------------------------------------------

// Transcribe runs speech recognition over a recorded WAV file and
// returns the transcript text.
func (a *Adapter) Transcribe(ctx context.Context, wavPath string) (string, error) {
	if a.caps.TranscribeTool == "" {
		return "", ErrNoTranscribe
	}

	cmd := exec.CommandContext(ctx, a.caps.TranscribeTool,
		transcribeArgs(a.caps.TranscribeTool, wavPath)...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s failed: %w", a.caps.TranscribeTool, err)
	}

	transcript := strings.TrimSpace(out.String())
	if transcript == "" {
		return "", errors.New("transcription produced no text")
	}
	return transcript, nil
}

// transcribeArgs maps recognition tools to their flags.
func transcribeArgs(tool, wavPath string) []string {
	base := filepath.Base(tool)
	switch base {
	case "whisper-cli", "whisper-cpp":
		// -nt suppresses timestamps so stdout is the bare transcript.
		return []string{"-nt", "-f", wavPath}
	default:
		return []string{wavPath}
	}
}
