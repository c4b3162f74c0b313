// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package xray implements the X-ray upload and analysis view.
//
// The view runs in one of two modes. In simulated mode the analysis is
// produced locally after a fixed delay, with canned condition
// probabilities. In live mode the image is posted to the backend
// gateway and the returned draft report is shown for review.
package xray
