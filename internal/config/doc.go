// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates raddesk configuration.
//
// Configuration comes from ~/.raddesk/config.toml with environment
// variable overrides on top and built-in defaults underneath. A missing
// file is not an error; raddesk runs fine on defaults.
package config
