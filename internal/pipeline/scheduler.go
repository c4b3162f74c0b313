// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler produces delayed message deliveries. The Controller never
// touches the clock directly; everything flows through here so tests
// can substitute a deterministic implementation.
type Scheduler interface {
	// After returns a command that delivers msg once d has elapsed.
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

// TimerScheduler is the production Scheduler, backed by tea.Tick.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
