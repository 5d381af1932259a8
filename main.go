// sage - a terminal client for the sage study assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/morganforge/sage-tui/internal/api"
	"github.com/morganforge/sage-tui/internal/cli"
	"github.com/morganforge/sage-tui/internal/config"
	"github.com/morganforge/sage-tui/internal/engine"
	"github.com/morganforge/sage-tui/internal/media"
	"github.com/morganforge/sage-tui/internal/persist"
	"github.com/morganforge/sage-tui/internal/ui/chat"
	"github.com/morganforge/sage-tui/internal/upload"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the config file")
	plain := flag.Bool("plain", false, "use the line-oriented REPL instead of the full-screen TUI")
	serverURL := flag.String("server", "", "override the assistant service URL")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sage %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Server.BaseURL,
		Timeout: time.Duration(cfg.Server.TimeoutSecs) * time.Second,
	})

	dataDir, err := config.BaseDir()
	if err != nil {
		fatal(err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	online := client.Ping(pingCtx) == nil
	cancel()
	if online {
		if err := ensureSession(client, cfg, dataDir); err != nil {
			fatal(err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "warning: assistant service is unreachable; starting offline")
	}

	store, err := persist.New(cfg, client)
	if err != nil {
		fatal(err)
	}

	eng := engine.New(engine.Options{
		Service: client,
		Config:  cfg,
		Store:   store,
		Media:   media.New(media.Probe(exec.LookPath)),
	})

	if cfg.Upload.Watch {
		outbox, err := upload.NewWatcher(cfg.Upload.OutboxDir, upload.NewPipeline(client), eng.NoteUpload)
		if err == nil {
			err = outbox.Watch()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: outbox watcher disabled: %v\n", err)
		} else {
			defer outbox.Close()
		}
	}

	if *plain {
		if err := cli.Run(eng, cfg); err != nil {
			fatal(err)
		}
		return
	}

	eng.Start(context.Background())
	p := tea.NewProgram(chat.New(eng, cfg, online), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

// =============================================================================
// SESSION BOOTSTRAP
// =============================================================================

// ensureSession restores a saved session cookie or, failing that, logs
// in interactively and stores the fresh cookie.
func ensureSession(client *api.Client, cfg *config.Config, dataDir string) error {
	creds := api.NewCredStore(dataDir)
	if cookie, err := creds.Load(); err == nil {
		client.SetSessionCookie(cookie)
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("no stored session and stdin is not a terminal; run interactively to log in")
	}

	email := cfg.Server.Email
	reader := bufio.NewReader(os.Stdin)
	for attempt := 0; attempt < 3; attempt++ {
		if email == "" {
			fmt.Print("email: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
			if email == "" {
				continue
			}
		}

		fmt.Print("password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return err
		}

		err = client.Login(context.Background(), email, string(password))
		if err == nil {
			if err := creds.Save(client.SessionCookie()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save session: %v\n", err)
			}
			return nil
		}
		if errors.Is(err, api.ErrBadCredentials) {
			fmt.Fprintln(os.Stderr, "invalid credentials, try again")
			email = cfg.Server.Email
			continue
		}
		return err
	}
	return errors.New("too many failed login attempts")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "sage:", err)
	os.Exit(1)
}
