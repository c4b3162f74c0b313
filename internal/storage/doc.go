// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for raddesk.
//
// Conversations are saved as JSON files under the state directory.
// The patient roster is mirrored into a small SQLite cache so the
// patients view stays usable when the backend is down.
package storage
