// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package media

import (
	"os"
	"syscall"
)

// Candidate tools in preference order.
var (
	speechTools     = []string{"espeak-ng", "espeak", "say"}
	recordTools     = []string{"arecord", "rec", "sox"}
	transcribeTools = []string{"whisper-cli", "whisper-cpp", "whisper"}
)

// pauseProcess suspends playback without ending it.
func pauseProcess(p *os.Process) error {
	return p.Signal(syscall.SIGSTOP)
}

// resumeProcess continues a suspended playback process.
func resumeProcess(p *os.Process) error {
	return p.Signal(syscall.SIGCONT)
}

// stopRecordingProcess asks the recorder to finish cleanly so the WAV
// header gets written.
func stopRecordingProcess(p *os.Process) {
	if p == nil {
		return
	}
	p.Signal(os.Interrupt)
}
