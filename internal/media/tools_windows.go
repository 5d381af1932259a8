// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package media

import (
	"errors"
	"os"
)

// Candidate tools in preference order. Windows builds rely on
// third-party ports being on PATH.
var (
	speechTools     = []string{"espeak-ng.exe", "espeak.exe"}
	recordTools     = []string{"sox.exe", "rec.exe"}
	transcribeTools = []string{"whisper-cli.exe", "whisper-cpp.exe"}
)

var errNoPauseSupport = errors.New("pausing playback is not supported on this platform")

func pauseProcess(p *os.Process) error {
	return errNoPauseSupport
}

func resumeProcess(p *os.Process) error {
	return errNoPauseSupport
}

// stopRecordingProcess ends the recorder. Windows has no interrupt
// signal for child processes, so the capture may lose its tail.
func stopRecordingProcess(p *os.Process) {
	if p == nil {
		return
	}
	p.Kill()
}
