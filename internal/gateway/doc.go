// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the HTTP client for the radiology backend.
//
// The backend exposes a JSON/multipart API for X-ray analysis, report
// review, report Q&A, and the patient roster. Every call is bounded by
// a request timeout; failures surface as *GatewayError so callers can
// fall back to degraded local behavior where one exists.
package gateway
