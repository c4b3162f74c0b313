// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations and reports to files on the
// local machine, in markdown for reading and JSON for tooling.
package export
