// raddesk TUI - a terminal client for the radiology AI workflow backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raddesk/raddesk-tui/internal/config"
	"github.com/raddesk/raddesk-tui/internal/gateway"
	"github.com/raddesk/raddesk-tui/internal/session"
	"github.com/raddesk/raddesk-tui/internal/storage"
	"github.com/raddesk/raddesk-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--version", "-v":
			fmt.Printf("raddesk %s (%s, %s)\n", Version, GitCommit, BuildDate)
			return
		case "--help", "-h":
			usage()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	config.SetGlobal(cfg)

	stateDir, err := cfg.StateDir()
	if err != nil {
		log.Fatalf("state dir: %v", err)
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		log.Fatalf("state dir: %v", err)
	}

	store := session.NewStore(session.Config{
		Dir:               stateDir,
		Passphrase:        cfg.Auth.DevPassphrase,
		PassphraseEnabled: cfg.Auth.DevPassphraseEnabled,
	})

	gw := gateway.NewClient(cfg.Gateway.BaseURL,
		gateway.WithTimeout(time.Duration(cfg.Gateway.TimeoutSecs)*time.Second))

	convStore, err := storage.NewConversationStore(stateDir)
	if err != nil {
		log.Fatalf("conversation store: %v", err)
	}

	// The roster cache is optional: a broken sqlite file should not
	// keep the client from starting.
	cache, err := storage.OpenPatientCache(filepath.Join(stateDir, "patients.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: patient cache disabled: %v\n", err)
		cache = nil
	}
	if cache != nil {
		defer cache.Close()
	}

	program := tea.NewProgram(
		app.New(cfg, store, gw, convStore, cache),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		log.Fatalf("raddesk: %v", err)
	}
}

func usage() {
	fmt.Println(`raddesk - terminal client for the radiology AI workflow backend

Usage:
  raddesk              start the TUI
  raddesk --version    print version information
  raddesk --help       show this help

Configuration is read from ~/.raddesk/config.toml; RADDESK_* environment
variables override individual settings (RADDESK_GATEWAY_URL,
RADDESK_GATEWAY_TIMEOUT_SECS, RADDESK_SIMULATED, RADDESK_STATE_DIR,
RADDESK_THEME).`)
}
