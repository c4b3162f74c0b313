// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reports implements the report list and detail views: browse
// reports from the gateway, edit and finalize a draft, and ask
// questions about a report with a local fallback when the backend
// assistant is unreachable.
package reports
