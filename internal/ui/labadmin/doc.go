// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package labadmin implements the lab administrator console: the
// patient roster with full management, plus uploading imaging studies
// for a patient.
package labadmin
