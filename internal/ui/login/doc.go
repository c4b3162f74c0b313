// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in and sign-up views.
//
// Both views share one form model: an identity field, a secret or
// phone field depending on the auth mode, and a role selector. Auth
// failures stay inline; the app layer surfaces them as toasts too.
package login
