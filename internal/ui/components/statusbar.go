// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raddesk/raddesk-tui/internal/ui/styles"
	"github.com/raddesk/raddesk-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is one key hint displayed on the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom bar: identity and route on the left,
// key hints on the right.
type StatusBar struct {
	theme *styles.Theme
}

// NewStatusBar creates a status bar bound to the theme.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{theme: theme}
}

// View renders the bar at the given width.
func (s StatusBar) View(width int, role, identity, route string, shortcuts []Shortcut) string {
	left := ""
	if role != "" {
		left = s.theme.StatusRole.Render(strings.ToUpper(role)) + " "
	}
	if identity != "" {
		left += identity
	}
	if route != "" {
		left += " · " + route
	}

	var hints []string
	for _, sc := range shortcuts {
		hints = append(hints, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Drop hints before truncating identity.
		right = ""
		gap = width - lipgloss.Width(left) - 2
		if gap < 1 {
			left = util.TruncateWidth(left, max(width-2, 0))
			gap = 0
		}
	}

	return s.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
