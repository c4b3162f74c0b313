// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log,
// messages, and the medical record types exchanged with the backend.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// STREAMING REVEAL TESTS
// =============================================================================

func TestMessage_AdvanceReveal_PrefixInvariant(t *testing.T) {
	const text = "Pneumonia detected in right lower lobe"
	msg := NewStreamingMessage("Image Analysis Agent", text)

	prevLen := 0
	for msg.IsStreaming {
		msg.AdvanceReveal()
		if !strings.HasPrefix(msg.FinalText, msg.VisibleText) {
			t.Fatalf("VisibleText %q is not a prefix of FinalText %q", msg.VisibleText, msg.FinalText)
		}
		if len(msg.VisibleText) < prevLen {
			t.Fatalf("VisibleText shrank from %d to %d", prevLen, len(msg.VisibleText))
		}
		prevLen = len(msg.VisibleText)
	}

	if msg.VisibleText != text {
		t.Errorf("after completion VisibleText = %q, want %q", msg.VisibleText, text)
	}
	if msg.FinalText != text {
		t.Errorf("after completion FinalText = %q, want %q", msg.FinalText, text)
	}
}

func TestMessage_AdvanceReveal_Unicode(t *testing.T) {
	// Multi-byte runes must never be split mid-character.
	const text = "Température 38.5°C — suivi nécessaire"
	msg := NewStreamingMessage("", text)

	for msg.IsStreaming {
		msg.AdvanceReveal()
		for _, r := range msg.VisibleText {
			if r == '�' {
				t.Fatalf("VisibleText %q contains replacement character", msg.VisibleText)
			}
		}
	}

	if msg.VisibleText != text {
		t.Errorf("VisibleText = %q, want %q", msg.VisibleText, text)
	}
}

func TestMessage_AdvanceReveal_Terminates(t *testing.T) {
	msg := NewStreamingMessage("", "abc")

	steps := 0
	for msg.AdvanceReveal() {
		steps++
		if steps > 10 {
			t.Fatal("stream did not terminate")
		}
	}

	if msg.IsStreaming {
		t.Error("IsStreaming still true after reveal finished")
	}
	// Finalized messages refuse further advancement.
	if msg.AdvanceReveal() {
		t.Error("AdvanceReveal returned true on finalized message")
	}
	if msg.VisibleText != "abc" {
		t.Errorf("VisibleText = %q, want %q", msg.VisibleText, "abc")
	}
}

func TestMessage_FreezeReveal(t *testing.T) {
	msg := NewStreamingMessage("NER Agent", "0123456789")

	for i := 0; i < 4; i++ {
		msg.AdvanceReveal()
	}
	msg.FreezeReveal()

	if msg.IsStreaming {
		t.Error("IsStreaming true after freeze")
	}
	if msg.FinalText != "0123" {
		t.Errorf("FinalText = %q, want frozen prefix %q", msg.FinalText, "0123")
	}
	if msg.VisibleText != msg.FinalText {
		t.Errorf("VisibleText = %q != FinalText = %q", msg.VisibleText, msg.FinalText)
	}

	// Frozen messages stay frozen; later ticks must not resurrect them.
	if msg.AdvanceReveal() {
		t.Error("AdvanceReveal returned true on frozen message")
	}
	if msg.FinalText != "0123" {
		t.Errorf("FinalText mutated after freeze: %q", msg.FinalText)
	}
}

func TestMessage_FreezeReveal_NoOpOnFinalized(t *testing.T) {
	msg := NewAgentMessage("", "complete text")
	msg.FreezeReveal()
	if msg.FinalText != "complete text" {
		t.Errorf("FreezeReveal mutated finalized message: %q", msg.FinalText)
	}
}

// =============================================================================
// MESSAGE HELPER TESTS
// =============================================================================

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short text untouched", "hello", 10, "hello"},
		{"long text truncated", "abcdefghij", 8, "abcde..."},
		{"exact length untouched", "abcdefgh", 8, "abcdefgh"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewUserMessage(tc.text)
			if got := msg.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestMessage_DisplayText(t *testing.T) {
	msg := NewStreamingMessage("", "abcdef")
	msg.AdvanceReveal()
	msg.AdvanceReveal()

	if got := msg.DisplayText(); got != "ab" {
		t.Errorf("DisplayText during stream = %q, want %q", got, "ab")
	}

	msg.FreezeReveal()
	if got := msg.DisplayText(); got != "ab" {
		t.Errorf("DisplayText after freeze = %q, want %q", got, "ab")
	}
}
