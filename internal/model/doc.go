// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log,
// messages, and the medical record types exchanged with the backend.
//
// The conversation log is an append-only ordered sequence of messages.
// Agent messages may stream: their visible text grows one rune at a time
// until it equals the final text, after which the message is immutable.
// Each stream is tracked independently so stopping one never affects
// another.
package model
