// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package patients implements the patient roster view: a searchable
// table backed by the gateway, with create/edit/delete and a sqlite
// cache that keeps the roster readable when the backend is down.
package patients
