// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raddesk/raddesk-tui/internal/model"
)

// panelWidth is the fixed width of the pipeline side panel.
const panelWidth = 34

// View renders the chat workspace.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.controller.Running() && m.width > 70 {
		panel := m.panel.View(m.controller.Stages(), m.controller.CurrentStage())
		row := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), " ", panel)
		b.WriteString(row)
	} else {
		b.WriteString(m.viewport.View())
		if m.controller.Running() {
			// Narrow terminal: show just the active stage inline.
			stages := m.controller.Stages()
			cur := m.controller.CurrentStage()
			if cur < len(stages) {
				b.WriteString("\n")
				b.WriteString(m.theme.StageActive.Render("▸ " + stages[cur].Name))
			}
		}
	}
	b.WriteString("\n")

	b.WriteString(m.renderInput())

	if m.toast.Visible() {
		b.WriteString("\n")
		b.WriteString(m.toast.View())
	}

	return b.String()
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("RadDesk AI Assistant")
	sub := m.theme.HeaderSubtitle.Render(m.conv.GetTitle())
	return m.theme.Header.Width(m.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, sub),
	)
}

func (m Model) renderInput() string {
	prompt := "❯"
	if m.attaching {
		prompt = "📎"
	}
	line := fmt.Sprintf("%s %s", m.theme.InputPrompt.Render(prompt), m.input.View())
	return m.theme.InputContainer.Width(m.width - 2).Render(line)
}

// refreshViewport re-renders the conversation log into the viewport,
// keeping the view pinned to the bottom when it already was.
func (m *Model) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderConversation())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderConversation() string {
	msgs := m.conv.All()
	if len(msgs) == 0 {
		return m.theme.StageDetail.Render(
			"\n  Welcome to RadDesk.\n\n" +
				"  Try \"show patient records\", \"generate report for patient 1215787\",\n" +
				"  or press ctrl+o to upload an X-ray image.\n",
		)
	}

	wrap := m.viewport.Width - 6
	if wrap < 20 {
		wrap = 20
	}

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg, wrap))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg *model.Message, wrap int) string {
	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	if msg.Role == model.RoleUser {
		bubble := m.theme.UserBubble.Width(min(wrap, lipgloss.Width(msg.FinalText)+2)).Render(msg.FinalText)
		block := lipgloss.JoinVertical(lipgloss.Right, bubble, ts)
		if msg.Attachment != "" {
			note := m.theme.StageDetail.Render("📎 " + msg.Attachment)
			block = lipgloss.JoinVertical(lipgloss.Right, note, bubble, ts)
		}
		return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block)
	}

	label := msg.SourceLabel
	if label == "" {
		label = msg.Role.DisplayName()
	}
	header := m.theme.AgentLabel.Render(label) + " " + ts

	if msg.Report != nil {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.reportCard.View(msg.Report))
	}

	text := msg.DisplayText()
	if msg.IsStreaming {
		text += "▌"
	}
	bubble := m.theme.AgentBubble.Width(wrap).Render(text)
	return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
}
