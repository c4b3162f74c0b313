// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the radiologist chat workspace.
//
// Free-form input is classified into simulated agent workflows; a
// running workflow shows its stage pipeline beside the log and ends in
// a result message revealed with a typewriter effect. Esc cancels the
// pipeline and freezes any in-flight reveal at its current prefix.
package chat
