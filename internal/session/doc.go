// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the client session store: login, phone login,
// logout, and restore of the persisted session across restarts.
//
// The store moves through three states: Loading while the persisted
// session is being restored at startup, then Authenticated or
// Unauthenticated. Loading is never re-entered. A corrupt persisted
// session is treated as absence and silently cleared, never surfaced
// as an error.
//
// The passphrase check is a dev-mode stand-in for real authentication and
// is gated behind a config flag; see config.AuthConfig.
package session
