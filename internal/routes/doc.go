// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package routes defines the client-side route table and the pure guard
// policy that decides, for a session state and a route's allowed roles,
// whether to render, show the loading placeholder, or redirect.
package routes
