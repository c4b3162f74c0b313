// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/pipeline"
	"github.com/raddesk/raddesk-tui/internal/storage"
	"github.com/raddesk/raddesk-tui/internal/ui/components"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StreamTickMsg advances one message's typewriter reveal. Each
// streaming message has its own tick chain keyed by message id, so
// freezing one never affects another; a tick landing after the freeze
// finds the stream stopped and simply does not reschedule.
type StreamTickMsg struct {
	MessageID string
}

// helpDueMsg delivers the fallback help response after its settle
// delay. Seq makes ticks from a cancelled exchange stale.
type helpDueMsg struct {
	Seq int
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat workspace.
type Model struct {
	theme *styles.Theme

	// Conversation log and the operation driving it
	conv       *model.Conversation
	controller *pipeline.Controller
	sched      pipeline.Scheduler

	// Pending help response generation counter
	helpSeq int

	// Streaming cadence
	tick time.Duration

	// Persistence
	store *storage.ConversationStore

	// UI components
	viewport      viewport.Model
	input         textinput.Model
	panel         components.PipelinePanel
	toast         components.Toast
	reportCard    components.ReportCard
	keyMap        KeyMap
	width, height int

	// Attach mode captures the next input line as a file path
	attaching bool
}

// New creates the chat workspace. store may be nil to disable
// persistence (used by tests).
func New(theme *styles.Theme, sched pipeline.Scheduler, store *storage.ConversationStore, tick time.Duration) Model {
	if tick <= 0 {
		tick = pipeline.StreamTickInterval
	}

	input := textinput.New()
	input.Placeholder = "Ask about a patient, report, or upload an X-ray…"
	input.CharLimit = 500
	input.Focus()

	vp := viewport.New(80, 20)

	return Model{
		theme:      theme,
		conv:       model.NewConversation(),
		controller: pipeline.NewController(sched),
		sched:      sched,
		tick:       tick,
		store:      store,
		viewport:   vp,
		input:      input,
		panel:      components.NewPipelinePanel(theme),
		toast:      components.NewToast(theme),
		reportCard: components.NewReportCard(theme, 76),
		keyMap:     DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Conversation exposes the log for persistence and tests.
func (m *Model) Conversation() *model.Conversation {
	return m.conv
}

// Busy reports whether a pipeline is running or a reveal is active.
func (m *Model) Busy() bool {
	return m.controller.Running() || m.conv.HasActiveStream()
}

// Teardown stops every pending timer source before the view goes
// away: the pipeline is cancelled and all reveals freeze at their
// current prefix. Ticks already in flight land as no-ops.
func (m *Model) Teardown() {
	m.controller.Cancel()
	m.conv.StopAllStreams()
	m.helpSeq++
}

// Persist saves the conversation if a store is configured.
func (m *Model) Persist() error {
	if m.store == nil || m.conv.IsEmpty() {
		return nil
	}
	_, err := m.store.Save(m.conv)
	return err
}

// SetSize lays out the workspace for the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	// Reserve rows for the header, input box, and status area.
	vpHeight := height - 7
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := width - 2
	if m.controller.Running() && width > 70 {
		vpWidth = width - panelWidth - 4
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.input.Width = width - 8
	m.refreshViewport()
}

// streamCmd schedules the next reveal tick for a message.
func (m *Model) streamCmd(messageID string) tea.Cmd {
	return m.sched.After(m.tick, StreamTickMsg{MessageID: messageID})
}
