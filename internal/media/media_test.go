// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"errors"
	"testing"
)

func lookPathWith(available ...string) func(string) (string, error) {
	set := make(map[string]bool, len(available))
	for _, name := range available {
		set[name] = true
	}
	return func(name string) (string, error) {
		if set[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

func TestProbeAllToolsPresent(t *testing.T) {
	caps := Probe(lookPathWith("espeak-ng", "arecord", "whisper-cli"))
	if !caps.CanSpeak() || !caps.CanRecord() || !caps.CanTranscribe() {
		t.Fatalf("capabilities = %+v, want all enabled", caps)
	}
}

func TestProbeNothingPresent(t *testing.T) {
	caps := Probe(lookPathWith())
	if caps.CanSpeak() || caps.CanRecord() || caps.CanTranscribe() {
		t.Fatalf("capabilities = %+v, want all disabled", caps)
	}
}

func TestProbePreferenceOrder(t *testing.T) {
	caps := Probe(lookPathWith("espeak", "espeak-ng"))
	if caps.SpeechTool != "espeak-ng" {
		t.Errorf("SpeechTool = %q, want espeak-ng preferred", caps.SpeechTool)
	}
}

func TestTranscribeRequiresRecorder(t *testing.T) {
	caps := Probe(lookPathWith("whisper-cli"))
	if caps.CanTranscribe() {
		t.Error("transcription without a recorder should be disabled")
	}
}

func TestSpeakWithoutToolFails(t *testing.T) {
	a := New(Capabilities{})
	if err := a.Speak("hello", SpeakOptions{}); !errors.Is(err, ErrNoSpeech) {
		t.Errorf("Speak = %v, want ErrNoSpeech", err)
	}
}

func TestRecordingLifecycleGuards(t *testing.T) {
	a := New(Capabilities{})
	if err := a.StartRecording(); !errors.Is(err, ErrNoRecorder) {
		t.Errorf("StartRecording = %v, want ErrNoRecorder", err)
	}
	if _, err := a.StopRecording(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("StopRecording = %v, want ErrNotRecording", err)
	}
	if a.Recording() {
		t.Error("Recording() should be false with nothing started")
	}
}

func TestCancelSpeechIdempotent(t *testing.T) {
	a := New(Capabilities{SpeechTool: "espeak-ng"})
	// Nothing playing: must not panic or error.
	a.CancelSpeech()
	a.CancelSpeech()
	if err := a.PauseSpeech(); err != nil {
		t.Errorf("PauseSpeech with nothing playing = %v", err)
	}
	if err := a.ResumeSpeech(); err != nil {
		t.Errorf("ResumeSpeech with nothing playing = %v", err)
	}
}

func TestSpeechArgs(t *testing.T) {
	args := speechArgs("espeak-ng", "hello world", SpeakOptions{Rate: 175, Voice: "en-us"})
	want := []string{"-s", "175", "-v", "en-us", "hello world"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args = %v, want %v", args, want)
		}
	}

	sayArgs := speechArgs("say", "hello", SpeakOptions{Rate: 200})
	if sayArgs[0] != "-r" || sayArgs[1] != "200" {
		t.Errorf("say args = %v", sayArgs)
	}
}

func TestRecordArgs(t *testing.T) {
	args := recordArgs("arecord", "/tmp/x.wav")
	if args[len(args)-1] != "/tmp/x.wav" {
		t.Errorf("arecord args = %v, want path last", args)
	}
	args = recordArgs("rec", "/tmp/x.wav")
	if args[len(args)-1] != "/tmp/x.wav" {
		t.Errorf("rec args = %v, want path last", args)
	}
}
