// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log,
// messages, and the medical record types exchanged with the backend.
package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages to keep in the log.
// When exceeded, old messages are pruned to prevent unbounded memory growth.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the append-only ordered log of messages for one chat
// surface. Messages are keyed by unique ID and preserve insertion order.
// All mutation happens on the update loop; streaming reveal mutates one
// message at a time via the streaming methods below.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages
	Messages []*Message `json:"messages"`
}

// NewConversation creates a new conversation with a generated ID.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        generateConversationID(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// LOG OPERATIONS
// =============================================================================

// Append adds a message to the end of the log.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
	c.pruneOldMessages()
}

// AppendUserMessage creates and appends a user message.
func (c *Conversation) AppendUserMessage(text string) *Message {
	msg := NewUserMessage(text)
	c.Append(msg)
	return msg
}

// AppendAgentMessage creates and appends a finalized agent message.
func (c *Conversation) AppendAgentMessage(sourceLabel, text string) *Message {
	msg := NewAgentMessage(sourceLabel, text)
	c.Append(msg)
	return msg
}

// AppendStreamingMessage creates and appends a streaming agent message.
// The caller is responsible for driving the reveal via AdvanceStream.
func (c *Conversation) AppendStreamingMessage(sourceLabel, fullText string) *Message {
	msg := NewStreamingMessage(sourceLabel, fullText)
	c.Append(msg)
	return msg
}

// ByID returns the message with the given ID, or nil.
func (c *Conversation) ByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// UpdateByID applies fn to the message with the given ID.
// Unknown IDs are a no-op, not an error.
func (c *Conversation) UpdateByID(id string, fn func(*Message)) {
	if msg := c.ByID(id); msg != nil {
		fn(msg)
		c.UpdatedAt = time.Now()
	}
}

// ReplaceAt swaps the message at index i for a new one, used by
// "regenerate" which replaces an agent response wholesale.
// Out-of-range indexes are a no-op.
func (c *Conversation) ReplaceAt(i int, msg *Message) {
	if i < 0 || i >= len(c.Messages) {
		return
	}
	c.Messages[i] = msg
	c.UpdatedAt = time.Now()
}

// RemoveAt deletes the message at index i. Out-of-range indexes are
// a no-op.
func (c *Conversation) RemoveAt(i int) {
	if i < 0 || i >= len(c.Messages) {
		return
	}
	c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
	c.UpdatedAt = time.Now()
}

// IndexOf returns the index of the message with the given ID, or -1.
func (c *Conversation) IndexOf(id string) int {
	for i, msg := range c.Messages {
		if msg.ID == id {
			return i
		}
	}
	return -1
}

// All returns the ordered message sequence.
func (c *Conversation) All() []*Message {
	return c.Messages
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// LastUserMessage returns the most recent user message, or nil.
func (c *Conversation) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clear removes all messages from the log.
func (c *Conversation) Clear() {
	c.Messages = make([]*Message, 0)
	c.UpdatedAt = time.Now()
}

// =============================================================================
// STREAMING CONTROL
// =============================================================================

// AdvanceStream reveals one more rune of the identified message's text.
// Returns true while that stream remains active. Unknown or already
// finalized messages return false, which lets a stale tick expire
// harmlessly after the stream was stopped.
func (c *Conversation) AdvanceStream(id string) bool {
	msg := c.ByID(id)
	if msg == nil {
		return false
	}
	active := msg.AdvanceReveal()
	c.UpdatedAt = time.Now()
	return active
}

// StopAllStreams freezes every streaming message at its current revealed
// prefix. Used by explicit cancellation and by view teardown so no orphaned
// tick can mutate the log afterwards.
func (c *Conversation) StopAllStreams() {
	for _, msg := range c.Messages {
		msg.FreezeReveal()
	}
	c.UpdatedAt = time.Now()
}

// HasActiveStream reports whether any message is still streaming.
func (c *Conversation) HasActiveStream() bool {
	for _, msg := range c.Messages {
		if msg.IsStreaming {
			return true
		}
	}
	return false
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle auto-generates a title from the first user message if not set.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = msg.Preview(50)
			return
		}
	}
}

// SetTitle manually sets the conversation title.
func (c *Conversation) SetTitle(title string) {
	c.Title = title
	c.UpdatedAt = time.Now()
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateConversationID creates a unique conversation ID.
func generateConversationID() string {
	return "conv_" + uuid.New().String()
}

// pruneOldMessages removes old messages when the log exceeds MaxMessages,
// keeping the most recent ones.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	start := len(c.Messages) - MaxMessages
	c.Messages = append([]*Message(nil), c.Messages[start:]...)
}
