// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline drives multi-stage agent operations.
//
// A Controller advances a named sequence of stages on timer messages,
// exposes the active stage for progress display, and terminates in
// exactly one of completed, cancelled, or failed. Timer delivery goes
// through the Scheduler interface so tests can drive the state machine
// without wall-clock waits.
package pipeline
