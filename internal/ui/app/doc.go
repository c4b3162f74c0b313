// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app owns the root Bubble Tea model: session restore, the
// route guard, switching between views, and clean teardown of any
// running pipelines and streams on exit.
package app
