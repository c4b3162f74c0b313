// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log,
// messages, and the medical record types exchanged with the backend.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAgent:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in the conversation log.
//
// For streaming agent messages, VisibleText is the prefix of FinalText
// revealed so far. Once IsStreaming is false the two are equal and the
// message never changes again; regeneration replaces the whole message.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// SourceLabel names the agent that produced the message
	// (e.g. "Image Analysis Agent"). Empty for user messages.
	SourceLabel string `json:"source_label,omitempty"`

	// Content
	FinalText   string `json:"final_text"`
	VisibleText string `json:"visible_text"`
	IsStreaming bool   `json:"is_streaming"`

	// Attachment is an optional image or file reference (path or URL).
	Attachment string `json:"attachment,omitempty"`

	// Report is an optional structured report payload rendered as a card.
	Report *Report `json:"report,omitempty"`
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(text string) *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleUser,
		Timestamp:   time.Now(),
		FinalText:   text,
		VisibleText: text,
	}
}

// NewAgentMessage creates a finalized (non-streaming) agent message.
func NewAgentMessage(sourceLabel, text string) *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAgent,
		Timestamp:   time.Now(),
		SourceLabel: sourceLabel,
		FinalText:   text,
		VisibleText: text,
	}
}

// NewStreamingMessage creates an agent message whose text will be revealed
// incrementally. VisibleText starts empty and grows toward FinalText.
func NewStreamingMessage(sourceLabel, fullText string) *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAgent,
		Timestamp:   time.Now(),
		SourceLabel: sourceLabel,
		FinalText:   fullText,
		IsStreaming: true,
	}
}

// NewReportMessage creates a finalized agent message carrying a structured
// report payload.
func NewReportMessage(sourceLabel string, report *Report) *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAgent,
		Timestamp:   time.Now(),
		SourceLabel: sourceLabel,
		Report:      report,
	}
}

// =============================================================================
// STREAMING REVEAL
// =============================================================================

// AdvanceReveal reveals one more rune of FinalText. It returns true while
// the stream remains active; when the full text has been revealed the
// message finalizes itself and AdvanceReveal returns false.
//
// Rune-based advancement keeps VisibleText a valid UTF-8 prefix.
func (m *Message) AdvanceReveal() bool {
	if !m.IsStreaming {
		return false
	}

	final := []rune(m.FinalText)
	visible := []rune(m.VisibleText)
	if len(visible) < len(final) {
		m.VisibleText = string(final[:len(visible)+1])
	}

	if len([]rune(m.VisibleText)) >= len(final) {
		m.VisibleText = m.FinalText
		m.IsStreaming = false
		return false
	}
	return true
}

// FreezeReveal terminates an in-flight stream at its current prefix: the
// revealed text becomes the final text. No-op on finalized messages.
func (m *Message) FreezeReveal() {
	if !m.IsStreaming {
		return
	}
	m.FinalText = m.VisibleText
	m.IsStreaming = false
}

// DisplayText returns the text to render: the revealed prefix while
// streaming, the final text otherwise.
func (m *Message) DisplayText() string {
	if m.IsStreaming {
		return m.VisibleText
	}
	return m.FinalText
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.DisplayText()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content or payload.
func (m *Message) IsEmpty() bool {
	return m.FinalText == "" && m.VisibleText == "" && m.Report == nil
}

// FirstLine returns the first line of the displayed text, trimmed.
func (m *Message) FirstLine() string {
	text := m.DisplayText()
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.New().String()
}
