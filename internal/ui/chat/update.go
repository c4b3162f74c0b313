// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raddesk/raddesk-tui/internal/export"
	"github.com/raddesk/raddesk-tui/internal/model"
	"github.com/raddesk/raddesk-tui/internal/pipeline"
)

// Update handles chat workspace messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pipeline.StageAdvanceMsg:
		cmd, _ := m.controller.Update(msg)
		m.refreshViewport()
		return m, cmd

	case pipeline.SettleMsg:
		_, result := m.controller.Update(msg)
		if result == nil {
			return m, nil
		}
		return m.emitResult(*result)

	case StreamTickMsg:
		if m.conv.AdvanceStream(msg.MessageID) {
			m.refreshViewport()
			return m, m.streamCmd(msg.MessageID)
		}
		// Reveal finished or was frozen; the chain ends here.
		m.refreshViewport()
		return m, nil

	case helpDueMsg:
		if msg.Seq != m.helpSeq {
			return m, nil
		}
		return m.emitResult(pipeline.HelpResult())

	default:
		m.toast.Update(msg)
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Send):
		return m.handleSend()

	case key.Matches(msg, m.keyMap.Stop):
		if m.attaching {
			m.attaching = false
			m.input.Placeholder = "Ask about a patient, report, or upload an X-ray…"
			m.input.SetValue("")
			return m, nil
		}
		return m.stopResponse()

	case key.Matches(msg, m.keyMap.Regenerate):
		return m.regenerate()

	case key.Matches(msg, m.keyMap.Attach):
		m.attaching = true
		m.input.Placeholder = "Path to an X-ray image or report PDF…"
		m.input.SetValue("")
		return m, nil

	case key.Matches(msg, m.keyMap.NewConv):
		if m.Busy() {
			return m, m.toast.Error("Stop the current response first")
		}
		if err := m.Persist(); err != nil {
			return m, m.toast.Error("Could not save conversation")
		}
		m.conv = model.NewConversation()
		m.refreshViewport()
		return m, m.toast.Info("New conversation")

	case key.Matches(msg, m.keyMap.Export):
		if m.conv.IsEmpty() {
			return m, m.toast.Error("Nothing to export")
		}
		path, err := export.ConversationToFile(m.conv, export.NewMarkdownExporter(), nil)
		if err != nil {
			return m, m.toast.Error("Export failed")
		}
		return m, m.toast.Success("Exported to " + path)

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSend routes the input line: a file path in attach mode, a
// recognized workflow phrase, or the fallback help response.
func (m Model) handleSend() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.Busy() {
		return m, m.toast.Error("A response is already in progress")
	}
	m.input.SetValue("")

	if m.attaching {
		m.attaching = false
		m.input.Placeholder = "Ask about a patient, report, or upload an X-ray…"
		return m.startUpload(text)
	}

	if w := pipeline.Classify(text); w != nil {
		return m.startWorkflow(*w, "")
	}

	// No workflow matched: echo the user and answer with the help
	// text after a short settle delay.
	m.conv.AppendUserMessage(text)
	m.refreshViewport()
	m.helpSeq++
	return m, m.sched.After(pipeline.SettleDelay, helpDueMsg{Seq: m.helpSeq})
}

// startUpload picks the workflow by file type and tags the user
// message with the attachment.
func (m Model) startUpload(path string) (Model, tea.Cmd) {
	w := pipeline.ForUpload(path)

	var toastCmd tea.Cmd
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		toastCmd = m.toast.Success("PDF uploaded - extracting patient info...")
	} else {
		toastCmd = m.toast.Success("Image uploaded - analyzing...")
	}
	next, cmd := m.startWorkflow(w, path)
	return next, tea.Batch(cmd, toastCmd)
}

// startWorkflow appends the user prompt and starts the stage pipeline.
func (m Model) startWorkflow(w pipeline.Workflow, attachment string) (Model, tea.Cmd) {
	userMsg := m.conv.AppendUserMessage(w.Prompt)
	userMsg.Attachment = attachment
	m.refreshViewport()

	cmd := m.controller.Start(w.Stages, w.Result)
	m.SetSize(m.width, m.height) // pipeline panel changes the layout
	return m, cmd
}

// emitResult appends an operation result to the log, starting the
// typewriter reveal for streamed text.
func (m Model) emitResult(res pipeline.Result) (Model, tea.Cmd) {
	m.SetSize(m.width, m.height)

	if res.Report != nil {
		msg := model.NewReportMessage(res.AgentName, res.Report)
		m.conv.Append(msg)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil
	}

	if res.Stream {
		msg := m.conv.AppendStreamingMessage(res.AgentName, res.Text)
		msg.Attachment = res.ImagePath
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, m.streamCmd(msg.ID)
	}

	msg := m.conv.AppendAgentMessage(res.AgentName, res.Text)
	msg.Attachment = res.ImagePath
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// stopResponse cancels the running pipeline and freezes every active
// reveal at its current prefix.
func (m Model) stopResponse() (Model, tea.Cmd) {
	stoppedPipeline := m.controller.Cancel()
	hadStream := m.conv.HasActiveStream()
	m.conv.StopAllStreams()
	m.helpSeq++

	if !stoppedPipeline && !hadStream {
		return m, nil
	}
	m.SetSize(m.width, m.height)
	m.refreshViewport()
	return m, m.toast.Success("Response stopped")
}

// regenerate re-runs the exchange behind the last agent message. A
// workflow prompt re-runs its pipeline; anything else re-streams the
// previous answer.
func (m Model) regenerate() (Model, tea.Cmd) {
	if m.Busy() {
		return m, m.toast.Error("Stop the current response first")
	}

	last := m.conv.Last()
	if last == nil || last.Role != model.RoleAgent {
		return m, nil
	}
	idx := m.conv.IndexOf(last.ID)
	if idx <= 0 {
		return m, nil
	}
	prev := m.conv.All()[idx-1]
	if prev.Role != model.RoleUser {
		return m, nil
	}

	// Drop the old answer; the replacement streams in fresh.
	m.conv.RemoveAt(idx)

	if w := pipeline.Classify(prev.FinalText); w != nil && prev.Attachment == "" {
		m.refreshViewport()
		cmd := m.controller.Start(w.Stages, w.Result)
		m.SetSize(m.width, m.height)
		return m, tea.Batch(cmd, m.toast.Success("Regenerating..."))
	}
	if prev.Attachment != "" {
		w := pipeline.ForUpload(prev.Attachment)
		m.refreshViewport()
		cmd := m.controller.Start(w.Stages, w.Result)
		m.SetSize(m.width, m.height)
		return m, tea.Batch(cmd, m.toast.Success("Regenerating analysis..."))
	}

	// Re-stream the same text.
	text := last.DisplayText()
	label := last.SourceLabel
	if label == "" {
		label = "AI Assistant"
	}
	msg := m.conv.AppendStreamingMessage(label, text)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(m.streamCmd(msg.ID), m.toast.Success("Regenerating..."))
}
