// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log,
// messages, and the medical record types exchanged with the backend.
package model

import (
	"fmt"
	"testing"
)

// =============================================================================
// LOG OPERATION TESTS
// =============================================================================

func TestConversation_AppendPreservesOrder(t *testing.T) {
	conv := NewConversation()

	for i := 0; i < 5; i++ {
		conv.AppendUserMessage(fmt.Sprintf("message %d", i))
	}

	if conv.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", conv.Len())
	}
	for i, msg := range conv.All() {
		want := fmt.Sprintf("message %d", i)
		if msg.FinalText != want {
			t.Errorf("message[%d] = %q, want %q", i, msg.FinalText, want)
		}
	}
}

func TestConversation_UpdateByID(t *testing.T) {
	conv := NewConversation()
	msg := conv.AppendAgentMessage("System", "original")

	conv.UpdateByID(msg.ID, func(m *Message) {
		m.SourceLabel = "Validation Agent"
	})
	if conv.ByID(msg.ID).SourceLabel != "Validation Agent" {
		t.Error("UpdateByID did not apply")
	}

	// Unknown IDs are a no-op, not an error.
	conv.UpdateByID("msg_missing", func(m *Message) {
		t.Error("update fn called for unknown id")
	})
}

func TestConversation_ReplaceAt(t *testing.T) {
	conv := NewConversation()
	conv.AppendUserMessage("question")
	old := conv.AppendAgentMessage("NER Agent", "first answer")

	idx := conv.IndexOf(old.ID)
	replacement := NewAgentMessage("NER Agent", "regenerated answer")
	conv.ReplaceAt(idx, replacement)

	if conv.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", conv.Len())
	}
	if conv.All()[1].FinalText != "regenerated answer" {
		t.Errorf("message not replaced: %q", conv.All()[1].FinalText)
	}
	if conv.ByID(old.ID) != nil {
		t.Error("old message still present after replacement")
	}

	// Out of range is a no-op.
	conv.ReplaceAt(99, NewUserMessage("x"))
	if conv.Len() != 2 {
		t.Errorf("Len() = %d after out-of-range ReplaceAt, want 2", conv.Len())
	}
}

func TestConversation_Prune(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+25; i++ {
		conv.Append(NewUserMessage(fmt.Sprintf("m%d", i)))
	}

	if conv.Len() != MaxMessages {
		t.Fatalf("Len() = %d, want %d", conv.Len(), MaxMessages)
	}
	// The oldest messages were dropped, the newest kept.
	if got := conv.Last().FinalText; got != fmt.Sprintf("m%d", MaxMessages+24) {
		t.Errorf("Last() = %q", got)
	}
}

// =============================================================================
// STREAMING CONTROL TESTS
// =============================================================================

func TestConversation_AdvanceStream_IndependentStreams(t *testing.T) {
	conv := NewConversation()
	a := conv.AppendStreamingMessage("Agent A", "aaaa")
	b := conv.AppendStreamingMessage("Agent B", "bbbbbbbb")

	// Drive stream A to completion; B advances at its own pace.
	for conv.AdvanceStream(a.ID) {
	}
	conv.AdvanceStream(b.ID)

	if a.IsStreaming {
		t.Error("stream A still active after completion")
	}
	if !b.IsStreaming {
		t.Error("stream B finalized by completion of stream A")
	}
	if b.VisibleText != "b" {
		t.Errorf("stream B VisibleText = %q, want %q", b.VisibleText, "b")
	}
}

func TestConversation_StopAllStreams(t *testing.T) {
	conv := NewConversation()
	a := conv.AppendStreamingMessage("Agent A", "full text a")
	b := conv.AppendStreamingMessage("Agent B", "full text b")
	done := conv.AppendAgentMessage("System", "already final")

	conv.AdvanceStream(a.ID)
	conv.AdvanceStream(a.ID)
	conv.AdvanceStream(a.ID)
	conv.StopAllStreams()

	if conv.HasActiveStream() {
		t.Error("active stream remains after StopAllStreams")
	}
	if a.FinalText != "ful" {
		t.Errorf("stream A FinalText = %q, want frozen prefix %q", a.FinalText, "ful")
	}
	if b.FinalText != "" {
		t.Errorf("stream B FinalText = %q, want empty prefix", b.FinalText)
	}
	if done.FinalText != "already final" {
		t.Errorf("finalized message mutated: %q", done.FinalText)
	}

	// Teardown safety: stale ticks after the stop mutate nothing.
	if conv.AdvanceStream(a.ID) {
		t.Error("AdvanceStream advanced a stopped stream")
	}
	if a.FinalText != "ful" || a.VisibleText != "ful" {
		t.Errorf("stopped stream mutated by stale tick: %q/%q", a.VisibleText, a.FinalText)
	}
}

func TestConversation_AdvanceStream_UnknownID(t *testing.T) {
	conv := NewConversation()
	if conv.AdvanceStream("msg_nope") {
		t.Error("AdvanceStream returned true for unknown id")
	}
}

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestConversation_TitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	if conv.GetTitle() != "New Conversation" {
		t.Errorf("empty title = %q", conv.GetTitle())
	}

	conv.AppendAgentMessage("System", "welcome")
	conv.AppendUserMessage("Show all patients with pneumonia")

	if conv.GetTitle() != "Show all patients with pneumonia" {
		t.Errorf("title = %q", conv.GetTitle())
	}
}
