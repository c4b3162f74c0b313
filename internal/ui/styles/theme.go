// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styled components for the application.
type Theme struct {
	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble  lipgloss.Style
	AgentBubble lipgloss.Style
	AgentLabel  lipgloss.Style
	Timestamp   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormLabel    lipgloss.Style
	FormValue    lipgloss.Style
	FormError    lipgloss.Style
	FormFocused  lipgloss.Style
	FormBlurred  lipgloss.Style
	FormSelected lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusRole   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// PIPELINE PANEL STYLES
	// ==========================================================================

	PipelinePanel  lipgloss.Style
	StageDoneText  lipgloss.Style
	StageActive    lipgloss.Style
	StagePending   lipgloss.Style
	StageDetail    lipgloss.Style

	// ==========================================================================
	// CARD / TABLE STYLES
	// ==========================================================================

	Card        lipgloss.Style
	CardTitle   lipgloss.Style
	TableHeader lipgloss.Style
	RowSelected lipgloss.Style

	// ==========================================================================
	// NOTIFICATION STYLES
	// ==========================================================================

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style
}

// NewThemeNamed builds the theme for a configured theme name. The
// "dark" theme pins every adaptive color to its dark variant, for
// terminals whose background detection misreports; any other name gets
// the adaptive clinical default.
func NewThemeNamed(name string) *Theme {
	if name == "dark" {
		lipgloss.SetHasDarkBackground(true)
	}
	return NewTheme()
}

// NewTheme creates the raddesk theme.
func NewTheme() *Theme {
	t := &Theme{}

	t.App = lipgloss.NewStyle().
		Background(Surface).
		Foreground(TextPrimary)

	t.Container = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.UserBubble = lipgloss.NewStyle().
		Background(UserBubbleBg).
		Foreground(UserBubbleFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AgentBubble = lipgloss.NewStyle().
		Background(AgentBubbleBg).
		Foreground(AgentBubbleFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AgentBubbleBorder).
		Padding(0, 1)

	t.AgentLabel = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FormValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FormError = lipgloss.NewStyle().
		Foreground(Rose)

	t.FormFocused = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(0, 1)

	t.FormBlurred = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.FormSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusRole = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PipelinePanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.StageDoneText = lipgloss.NewStyle().
		Foreground(StageDone)

	t.StageActive = lipgloss.NewStyle().
		Foreground(StageActive).
		Bold(true)

	t.StagePending = lipgloss.NewStyle().
		Foreground(StagePending)

	t.StageDetail = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CardTitle = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.TableHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.RowSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal)

	t.ToastSuccess = lipgloss.NewStyle().
		Foreground(Emerald).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Emerald).
		Padding(0, 1)

	t.ToastError = lipgloss.NewStyle().
		Foreground(Rose).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.ToastInfo = lipgloss.NewStyle().
		Foreground(Sky).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Sky).
		Padding(0, 1)

	return t
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
