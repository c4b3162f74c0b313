// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// =============================================================================
// TOAST NOTIFICATIONS
// =============================================================================

// ToastLevel classifies a transient notification.
type ToastLevel int

const (
	ToastSuccess ToastLevel = iota
	ToastError
	ToastInfo
)

// toastDuration is how long a toast stays visible.
const toastDuration = 3 * time.Second

// ToastExpiredMsg dismisses a toast. Stale expirations (from a toast
// already replaced) are ignored by sequence number.
type ToastExpiredMsg struct{ Seq int }

// Toast shows one transient notification at a time. A new toast
// replaces the current one; the old expiry becomes stale.
type Toast struct {
	theme *styles.Theme

	seq     int
	level   ToastLevel
	message string
	visible bool
}

// NewToast creates a toast display bound to the theme.
func NewToast(theme *styles.Theme) Toast {
	return Toast{theme: theme}
}

// Show displays a notification and schedules its expiry.
func (t *Toast) Show(level ToastLevel, message string) tea.Cmd {
	t.seq++
	t.level = level
	t.message = message
	t.visible = true

	seq := t.seq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Seq: seq}
	})
}

// Success shows a success notification.
func (t *Toast) Success(message string) tea.Cmd { return t.Show(ToastSuccess, message) }

// Error shows an error notification.
func (t *Toast) Error(message string) tea.Cmd { return t.Show(ToastError, message) }

// Info shows a neutral notification.
func (t *Toast) Info(message string) tea.Cmd { return t.Show(ToastInfo, message) }

// Update handles expiry messages.
func (t *Toast) Update(msg tea.Msg) {
	if m, ok := msg.(ToastExpiredMsg); ok && m.Seq == t.seq {
		t.visible = false
	}
}

// Visible reports whether a toast is currently shown.
func (t *Toast) Visible() bool { return t.visible }

// View renders the active toast, or an empty string.
func (t *Toast) View() string {
	if !t.visible {
		return ""
	}
	switch t.level {
	case ToastError:
		return t.theme.ToastError.Render("✗ " + t.message)
	case ToastInfo:
		return t.theme.ToastInfo.Render("ℹ " + t.message)
	default:
		return t.theme.ToastSuccess.Render("✓ " + t.message)
	}
}
